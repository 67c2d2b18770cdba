package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ssbags/storefront/internal/catalog"
	"github.com/ssbags/storefront/internal/checkout"
	"github.com/ssbags/storefront/internal/domain"
	"github.com/ssbags/storefront/internal/session"
	"github.com/ssbags/storefront/internal/view"
	apperrors "github.com/ssbags/storefront/pkg/errors"
	"github.com/ssbags/storefront/pkg/health"
	"github.com/ssbags/storefront/pkg/pagination"
)

func (c *CLI) shopCommands() []command {
	return []command{
		{"products", "[-search s] [-category c] [-sort price-low|price-high|newest] [-page n -per-page n]", "list products", c.products},
		{"categories", "", "list product categories", c.categories},
		{"cart", "", "show the cart", c.showCart},
		{"add", "<product-id>", "add a product to the cart", c.add},
		{"inc", "<position>", "increase a cart line by one", c.step(1)},
		{"dec", "<position>", "decrease a cart line by one", c.step(-1)},
		{"qty", "<position> <delta>", "change a cart line quantity by delta", c.qty},
		{"remove", "<position>", "remove a cart line", c.remove},
		{"clear", "", "empty the cart", c.clear},
		{"checkout", "[-platform desktop|android|ios] [-user-agent ua]", "send the order over WhatsApp", c.checkout},
		{"register", "-name n -email e -phone p -password pw -confirm pw", "create an account", c.register},
		{"login", "-email e -password pw", "sign in", c.login},
		{"logout", "", "sign out and empty the cart", c.logout},
		{"whoami", "", "show the signed-in user", c.whoami},
		{"orders", "", "show your order history", c.orders},
		{"resend", "<order-id> [-platform p]", "resend a pending order over WhatsApp", c.resend},
		{"status", "", "check the backend and local storage", c.status},
		{"metrics", "", "show backend call counters for this run", c.metrics},
	}
}

// listing returns the backend catalog, or the sample catalog when the
// backend cannot be reached and samples are enabled.
func (c *CLI) listing(ctx context.Context) ([]domain.Product, error) {
	products, err := c.Products.Products(ctx)
	if err == nil {
		return products, nil
	}
	if len(c.Sample) == 0 {
		return nil, err
	}
	c.Logger.WarnContext(ctx, "using sample catalog", slog.String("error", err.Error()))
	return c.Sample, nil
}

func (c *CLI) products(ctx context.Context, args []string) error {
	fs := c.newFlags("products")
	var q catalog.Query
	fs.StringVar(&q.Search, "search", "", "match name or description")
	fs.StringVar(&q.Category, "category", "", "exact category")
	fs.StringVar(&q.Sort, "sort", "", "price-low, price-high or newest")
	page := pageFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := q.Validate(); err != nil {
		return err
	}

	products, err := c.listing(ctx)
	if err != nil {
		return err
	}
	result := pagination.Paginate(catalog.Filter(products, q), page())
	if err := view.Products(c.out, result.Data); err != nil {
		return err
	}
	pageFooter(c.out, result)
	return nil
}

func (c *CLI) categories(ctx context.Context, _ []string) error {
	cats, err := c.API.Categories(ctx)
	if err != nil {
		products, lerr := c.listing(ctx)
		if lerr != nil {
			return err
		}
		for _, name := range catalog.Categories(products) {
			fmt.Fprintln(c.out, name)
		}
		return nil
	}
	for _, cat := range cats {
		fmt.Fprintln(c.out, cat.Name)
	}
	return nil
}

func (c *CLI) showCart(_ context.Context, _ []string) error {
	return view.Cart(c.out, c.Cart.Items(), c.Cart.Totals())
}

func (c *CLI) add(ctx context.Context, args []string) error {
	id, err := intArg(args, 0, "product id")
	if err != nil {
		return err
	}
	if _, err := c.Cart.AddItem(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			fmt.Fprintf(c.errOut, "No product with id %d\n", id)
			return nil
		}
		return err
	}
	return nil
}

func (c *CLI) step(delta int) func(context.Context, []string) error {
	return func(ctx context.Context, args []string) error {
		idx, err := position(args, 0)
		if err != nil {
			return err
		}
		return c.Cart.UpdateQuantity(ctx, idx, delta)
	}
}

func (c *CLI) qty(ctx context.Context, args []string) error {
	idx, err := position(args, 0)
	if err != nil {
		return err
	}
	delta, err := intArg(args, 1, "delta")
	if err != nil {
		return err
	}
	return c.Cart.UpdateQuantity(ctx, idx, delta)
}

func (c *CLI) remove(ctx context.Context, args []string) error {
	idx, err := position(args, 0)
	if err != nil {
		return err
	}
	_, err = c.Cart.RemoveItem(ctx, idx)
	return err
}

func (c *CLI) clear(ctx context.Context, _ []string) error {
	return c.Cart.Clear(ctx)
}

// platformFlags registers -platform and -user-agent. The user agent wins
// when both are set.
func (c *CLI) platformFlags(name string) (parse func([]string) (checkout.Platform, []string, error)) {
	fs := c.newFlags(name)
	platform := fs.String("platform", string(c.Platform), "desktop, android or ios")
	ua := fs.String("user-agent", "", "derive the platform from a browser user agent")
	return func(args []string) (checkout.Platform, []string, error) {
		if err := parseFlags(fs, args); err != nil {
			return "", nil, err
		}
		if *ua != "" {
			return checkout.PlatformFromUserAgent(*ua), fs.Args(), nil
		}
		p, err := checkout.ParsePlatform(*platform)
		return p, fs.Args(), err
	}
}

func (c *CLI) checkout(ctx context.Context, args []string) error {
	platform, _, err := c.platformFlags("checkout")(args)
	if err != nil {
		return err
	}
	receipt, err := c.Checkout.Checkout(ctx, platform)
	c.printReceipt(receipt, err)
	return err
}

// printReceipt shows the message for manual copy when the hand-off failed.
// On success the opener has already shown or opened the link.
func (c *CLI) printReceipt(r checkout.Receipt, err error) {
	if err == nil || r.Message == "" {
		return
	}
	fmt.Fprintf(c.out, "\n%s\n", r.Message)
}

func (c *CLI) register(ctx context.Context, args []string) error {
	fs := c.newFlags("register")
	var form session.RegisterForm
	fs.StringVar(&form.Name, "name", "", "full name")
	fs.StringVar(&form.Email, "email", "", "email address")
	fs.StringVar(&form.Phone, "phone", "", "mobile number, e.g. 03001234567")
	fs.StringVar(&form.Password, "password", "", "at least 6 characters")
	fs.StringVar(&form.Confirm, "confirm", "", "repeat the password")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := c.Session.Register(ctx, form); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Registration successful! Please login.")
	return nil
}

func (c *CLI) login(ctx context.Context, args []string) error {
	fs := c.newFlags("login")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	user, err := c.Session.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Welcome, %s!\n", user.Name)
	return nil
}

func (c *CLI) logout(ctx context.Context, _ []string) error {
	if err := c.Session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Logged out")
	return nil
}

func (c *CLI) whoami(_ context.Context, _ []string) error {
	user, ok := c.Session.User()
	if !ok {
		fmt.Fprintln(c.out, "Not logged in")
		return nil
	}
	fmt.Fprintf(c.out, "%s <%s>\n", user.Name, user.Email)
	if claims, err := c.Session.TokenClaims(); err == nil && !claims.ExpiresAt.IsZero() {
		fmt.Fprintf(c.out, "Session expires %s\n", claims.ExpiresAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func (c *CLI) userOrders(ctx context.Context) ([]domain.Order, error) {
	user, ok := c.Session.User()
	if !ok {
		return nil, apperrors.Unauthorized(checkout.MsgLoginRequired)
	}
	return c.API.UserOrders(ctx, c.Session.Token(), user.ID)
}

func (c *CLI) orders(ctx context.Context, _ []string) error {
	orders, err := c.userOrders(ctx)
	if err != nil {
		return err
	}
	return view.Orders(c.out, orders)
}

func (c *CLI) resend(ctx context.Context, args []string) error {
	id, err := intArg(args, 0, "order id")
	if err != nil {
		return err
	}
	platform, _, err := c.platformFlags("resend")(args[1:])
	if err != nil {
		return err
	}

	orders, err := c.userOrders(ctx)
	if err != nil {
		return err
	}
	for _, o := range orders {
		if o.ID == id {
			receipt, err := c.Checkout.Resend(ctx, platform, o)
			c.printReceipt(receipt, err)
			return err
		}
	}
	return apperrors.NotFound("order", fmt.Sprint(id))
}

func (c *CLI) status(ctx context.Context, _ []string) error {
	resp := c.Health.Check(ctx)
	fmt.Fprintf(c.out, "Status: %s\n", strings.ToUpper(string(resp.Status)))
	for _, name := range resp.Names() {
		check := resp.Checks[name]
		line := fmt.Sprintf("  %-10s %-8s %s", name, check.Status, check.Latency.Round(time.Millisecond))
		if check.Error != "" {
			line += "  " + check.Error
		}
		fmt.Fprintln(c.out, line)
	}
	if c.BreakerState != nil {
		fmt.Fprintf(c.out, "Circuit breaker: %s\n", c.BreakerState())
	}
	if user, ok := c.Session.User(); ok {
		fmt.Fprintf(c.out, "Signed in as %s\n", user.Email)
	}
	if c.Session.IsAdmin() {
		fmt.Fprintln(c.out, "Admin session active")
	}
	if resp.Status == health.StatusDown {
		return apperrors.Unavailable("The store is not fully available right now", nil)
	}
	return nil
}
