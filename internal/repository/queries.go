package repository

// WordPress（WPGraphQL + ACF）に送るGraphQLドキュメント。
// オペレーション名はメトリクスとログのラベルにも使う。
const (
	opGetEvents      = "GetEvents"
	opGetHeroEvents  = "GetHeroEvents"
	opGetEventBySlug = "GetEventBySlug"
	opGetPosts       = "GetPosts"
	opGetPostBySlug  = "GetPostBySlug"
	opGetPageBySlug  = "GetPageBySlug"
	opGetSocialLinks = "GetSocialLinks"
	opGetSettings    = "GetSettings"
)

const getEventsQuery = `query GetEvents($first: Int = 20) {
  events(first: $first) {
    nodes {
      title
      slug
      featuredImage { node { sourceUrl } }
      eventTypes { nodes { name } }
      eventDetails { startDateTime endDateTime location priceInfo }
    }
  }
}`

const getHeroEventsQuery = `query GetHeroEvents($first: Int = 5) {
  events(first: $first, where: { orderby: { field: DATE, order: ASC } }) {
    nodes {
      title
      slug
      featuredImage { node { sourceUrl } }
      eventDetails { startDateTime endDateTime location }
    }
  }
}`

const getEventBySlugQuery = `query GetEventBySlug($slug: ID!) {
  event(id: $slug, idType: SLUG) {
    title
    slug
    content
    featuredImage { node { sourceUrl } }
    eventTypes { nodes { name } }
    eventDetails { startDateTime endDateTime location priceInfo }
  }
}`

const getPostsQuery = `query GetPosts($first: Int = 3) {
  posts(first: $first) {
    nodes {
      title
      slug
      excerpt
      date
      featuredImage { node { sourceUrl } }
    }
  }
}`

const getPostBySlugQuery = `query GetPostBySlug($slug: ID!) {
  post(id: $slug, idType: SLUG) {
    title
    slug
    excerpt
    content
    date
    featuredImage { node { sourceUrl } }
  }
}`

const getPageBySlugQuery = `query GetPageBySlug($slug: ID!) {
  page(id: $slug, idType: URI) {
    title
    slug
    content
    featuredImage { node { sourceUrl } }
  }
}`

const getSocialLinksQuery = `query GetSocialLinks($first: Int = 10) {
  socialLinks(first: $first) {
    nodes {
      title
      socialDetails { socialUrl order }
    }
  }
}`

const getSettingsQuery = `query GetSettings {
  generalSettings { title description url }
}`
