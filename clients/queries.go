package clients

// UpsellProductsQuery is the fixed catalog query behind the cart upsell list.
const UpsellProductsQuery = `#graphql
query CartUpsellProducts($country: CountryCode, $language: LanguageCode)
@inContext(country: $country, language: $language) {
  products(first: 8) {
    nodes {
      id
      title
      handle
      description
      images(first: 12) {
        nodes {
          url
          altText
        }
      }
      variants(first: 30) {
        nodes {
          id
          price {
            amount
            currencyCode
          }
        }
      }
    }
  }
}`

const cartFragment = `#graphql
fragment CartFields on Cart {
  id
  checkoutUrl
  totalQuantity
  cost {
    subtotalAmount { amount currencyCode }
    totalAmount { amount currencyCode }
  }
  discountCodes { code applicable }
  lines(first: 100) {
    nodes {
      id
      quantity
      cost { totalAmount { amount currencyCode } }
      merchandise {
        ... on ProductVariant {
          id
          title
          image { url altText }
          product { title handle }
        }
      }
    }
  }
}`

const CartQuery = cartFragment + `
query Cart($cartId: ID!, $country: CountryCode, $language: LanguageCode)
@inContext(country: $country, language: $language) {
  cart(id: $cartId) { ...CartFields }
}`

const CartCreateMutation = cartFragment + `
mutation CartCreate($input: CartInput!, $country: CountryCode, $language: LanguageCode)
@inContext(country: $country, language: $language) {
  cartCreate(input: $input) {
    cart { ...CartFields }
    userErrors { field message code }
  }
}`

const CartLinesAddMutation = cartFragment + `
mutation CartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!, $country: CountryCode, $language: LanguageCode)
@inContext(country: $country, language: $language) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart { ...CartFields }
    userErrors { field message code }
  }
}`
