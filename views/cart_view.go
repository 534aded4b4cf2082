package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yashrajoria/storefront/models"
	"github.com/yashrajoria/storefront/shipping"
	"github.com/yashrajoria/storefront/upsell"
)

//go:embed templates/*.html
var templateFS embed.FS

// SkeletonCount is the number of placeholder cells while upsell products load.
const SkeletonCount = 6

type Layout string

const (
	LayoutPage  Layout = "page"
	LayoutAside Layout = "aside"
)

// ParseLayout maps the ?layout= query value; anything unknown is the full page.
func ParseLayout(s string) Layout {
	if Layout(s) == LayoutAside {
		return LayoutAside
	}
	return LayoutPage
}

// UpsellReader is the read side of the upsell slot.
type UpsellReader interface {
	State() upsell.State
}

type Config struct {
	FreeShippingGoal decimal.Decimal
	// CurrencyLabel replaces LocalCurrencyCode (and a missing code) in rendered prices.
	CurrencyLabel     string
	LocalCurrencyCode string
}

func (c Config) withDefaults() Config {
	if !c.FreeShippingGoal.IsPositive() {
		c.FreeShippingGoal = shipping.DefaultGoal
	}
	if c.CurrencyLabel == "" {
		c.CurrencyLabel = "KSh"
	}
	if c.LocalCurrencyCode == "" {
		c.LocalCurrencyCode = "KES"
	}
	return c
}

// Page is everything one render of the cart reads.
type Page struct {
	Cart   *models.Cart
	Layout Layout
	Locale models.Locale
	Upsell UpsellReader
	Rows   *RowSet
}

type CartView struct {
	cfg  Config
	tmpl *template.Template
}

func NewCartView(cfg Config) (*CartView, error) {
	tmpl, err := template.New("storefront").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse cart templates: %w", err)
	}
	return &CartView{cfg: cfg.withDefaults(), tmpl: tmpl}, nil
}

// Render writes the cart. The page layout gets the document chrome; aside is a fragment.
func (v *CartView) Render(w io.Writer, p Page) error {
	m, err := v.Build(p)
	if err != nil {
		return err
	}
	name := "page"
	if m.Layout == LayoutAside {
		name = "cart"
	}
	return v.tmpl.ExecuteTemplate(w, name, m)
}

type UpsellBranch string

const (
	BranchLoading  UpsellBranch = "loading"
	BranchError    UpsellBranch = "error"
	BranchEmpty    UpsellBranch = "empty"
	BranchProducts UpsellBranch = "products"
)

type CartModel struct {
	Layout         Layout
	ContainerClass string
	ShowEmpty      bool
	ContinueURL    string
	Banner         *BannerModel
	Lines          []LineModel
	Summary        *SummaryModel
	Upsell         UpsellModel
	Toast          *ToastModel
}

type BannerModel struct {
	Unlocked  bool
	Remaining string
	Percent   float64
}

type LineModel struct {
	ID           string
	ProductTitle string
	VariantTitle string
	URL          string
	Image        *models.Image
	Quantity     int
	Total        string
}

type SummaryModel struct {
	Subtotal    string
	Total       string
	Discounts   []string
	CheckoutURL string
}

type UpsellModel struct {
	Branch    UpsellBranch
	Message   string
	Skeletons []struct{}
	Products  []ProductCard
}

type ProductCard struct {
	ID        string
	Title     string
	URL       string
	Image     *models.Image
	Price     string
	VariantID string
	AddAction string
	Layout    Layout
	Busy      bool
}

type ToastModel struct {
	Message   string
	Kind      ToastKind
	DismissMS int64
}

// Build derives the view model. Nothing derived here is kept between renders.
func (v *CartView) Build(p Page) (CartModel, error) {
	if p.Upsell == nil {
		return CartModel{}, upsell.ErrNoProvider
	}
	layout := p.Layout
	if layout == "" {
		layout = LayoutPage
	}
	prefix := p.Locale.PathPrefix()

	m := CartModel{
		Layout:         layout,
		ContainerClass: "cart-main",
		ShowEmpty:      !p.Cart.HasLines(),
		ContinueURL:    prefix + "/collections",
		Upsell:         v.upsellModel(p.Upsell.State(), p.Rows, prefix, layout),
	}
	if p.Cart.HasApplicableDiscount() {
		m.ContainerClass += " with-discount"
	}

	if p.Cart.HasItems() {
		progress := shipping.Compute(Subtotal(p.Cart), v.cfg.FreeShippingGoal)
		m.Banner = &BannerModel{
			Unlocked:  progress.Unlocked,
			Remaining: v.cfg.CurrencyLabel + " " + formatAmount(progress.Remaining),
			Percent:   progress.Percent,
		}
		m.Summary = v.summaryModel(p.Cart)
	}

	if p.Cart != nil {
		for _, line := range p.Cart.Lines.Nodes {
			m.Lines = append(m.Lines, LineModel{
				ID:           line.ID,
				ProductTitle: line.Merchandise.Product.Title,
				VariantTitle: variantTitle(line.Merchandise.Title),
				URL:          prefix + "/products/" + line.Merchandise.Product.Handle,
				Image:        line.Merchandise.Image,
				Quantity:     line.Quantity,
				Total:        v.money(line.Cost.TotalAmount),
			})
		}
	}

	if t, ok := p.Rows.Toast(); ok {
		m.Toast = &ToastModel{Message: t.Message, Kind: t.Kind, DismissMS: t.DismissAfter.Milliseconds()}
	}
	return m, nil
}

// Subtotal is the cart subtotal rounded to a whole unit. A missing cart is zero.
func Subtotal(c *models.Cart) decimal.Decimal {
	if c == nil {
		return decimal.Zero
	}
	return c.Cost.SubtotalAmount.Amount.Round(0)
}

func (v *CartView) upsellModel(st upsell.State, rows *RowSet, prefix string, layout Layout) UpsellModel {
	switch st.Phase() {
	case upsell.PhaseLoading:
		return UpsellModel{Branch: BranchLoading, Skeletons: make([]struct{}, SkeletonCount)}
	case upsell.PhaseErrored:
		return UpsellModel{Branch: BranchError, Message: st.Err.Error()}
	}
	if len(st.Products) == 0 {
		return UpsellModel{Branch: BranchEmpty}
	}

	cards := make([]ProductCard, 0, len(st.Products))
	for _, p := range st.Products {
		card := ProductCard{
			ID:        p.ID,
			Title:     p.Title,
			URL:       prefix + "/products/" + p.Handle,
			AddAction: prefix + "/cart/lines",
			Layout:    layout,
			Busy:      rows.Busy(p.ID),
		}
		if img, ok := p.FirstImage(); ok {
			if img.AltText == "" {
				img.AltText = p.Title
			}
			card.Image = &img
		}
		if variant, ok := p.FirstVariant(); ok {
			card.VariantID = variant.ID
			card.Price = v.money(variant.Price)
		}
		cards = append(cards, card)
	}
	return UpsellModel{Branch: BranchProducts, Products: cards}
}

func (v *CartView) summaryModel(c *models.Cart) *SummaryModel {
	s := &SummaryModel{
		Subtotal:    v.money(c.Cost.SubtotalAmount),
		Total:       v.money(c.Cost.TotalAmount),
		CheckoutURL: c.CheckoutURL,
	}
	for _, d := range c.DiscountCodes {
		if d.Applicable {
			s.Discounts = append(s.Discounts, strings.ToUpper(d.Code))
		}
	}
	return s
}

// variantTitle hides Shopify's placeholder title for single-variant products.
func variantTitle(t string) string {
	if t == "Default Title" {
		return ""
	}
	return t
}
