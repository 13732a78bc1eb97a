package router

// Route names
const (
	NameLayout        = "Layout"
	NameHome          = "Home"
	NameProducts      = "Products"
	NameProductDetail = "ProductDetail"
	NameCart          = "Cart"
	NameCheckout      = "Checkout"
	NameOrders        = "Orders"
	NameOrderDetail   = "OrderDetail"
	NameAddresses     = "Addresses"
	NameCoupons       = "Coupons"
	NameReturns       = "Returns"
	NameReturnDetail  = "ReturnDetail"
	NameProfile       = "Profile"
	NameLogin         = "Login"
	NameRegister      = "Register"
	NameNotFound      = "NotFound"
)

const (
	HomePath  = "/"
	LoginPath = "/login"

	// CatchAll matches any path no other route claims
	CatchAll = "*"
)

// Meta carries the guard flags and page title of a route
type Meta struct {
	RequiresAuth  bool   `json:"requires_auth,omitempty"`
	RequiresGuest bool   `json:"requires_guest,omitempty"`
	Title         string `json:"title,omitempty"`
}

// Route is one entry of the route table. Child paths without a leading slash
// are relative to the parent.
type Route struct {
	Path     string  `json:"path"`
	Name     string  `json:"name,omitempty"`
	View     string  `json:"view"`
	Meta     Meta    `json:"meta"`
	Children []Route `json:"children,omitempty"`
}

// DefaultRoutes returns the storefront route table
func DefaultRoutes() []Route {
	auth := func(title string) Meta { return Meta{RequiresAuth: true, Title: title} }

	return []Route{
		{
			Path: "/",
			Name: NameLayout,
			View: "DefaultLayout",
			Children: []Route{
				{Path: "", Name: NameHome, View: "Home", Meta: Meta{Title: "Home"}},
				{Path: "/products", Name: NameProducts, View: "Products", Meta: Meta{Title: "Products"}},
				{Path: "/products/:id", Name: NameProductDetail, View: "ProductDetail", Meta: Meta{Title: "Product Details"}},
				{Path: "/cart", Name: NameCart, View: "Cart", Meta: auth("Cart")},
				{Path: "/checkout", Name: NameCheckout, View: "Checkout", Meta: auth("Checkout")},
				{Path: "/orders", Name: NameOrders, View: "Orders", Meta: auth("My Orders")},
				{Path: "/orders/:id", Name: NameOrderDetail, View: "OrderDetail", Meta: auth("Order Details")},
				{Path: "/addresses", Name: NameAddresses, View: "Addresses", Meta: auth("Addresses")},
				{Path: "/coupons", Name: NameCoupons, View: "Coupons", Meta: auth("My Coupons")},
				{Path: "/returns", Name: NameReturns, View: "Returns", Meta: auth("Returns")},
				{Path: "/returns/:id", Name: NameReturnDetail, View: "ReturnDetail", Meta: auth("Return Details")},
				{Path: "/profile", Name: NameProfile, View: "Profile", Meta: auth("Profile")},
			},
		},
		{Path: LoginPath, Name: NameLogin, View: "Login", Meta: Meta{RequiresGuest: true, Title: "Login"}},
		{Path: "/register", Name: NameRegister, View: "Register", Meta: Meta{RequiresGuest: true, Title: "Register"}},
		{Path: CatchAll, Name: NameNotFound, View: "NotFound", Meta: Meta{Title: "Page Not Found"}},
	}
}
