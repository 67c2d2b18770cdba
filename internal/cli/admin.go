package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/ssbags/storefront/internal/api"
	"github.com/ssbags/storefront/internal/domain"
	"github.com/ssbags/storefront/internal/view"
	apperrors "github.com/ssbags/storefront/pkg/errors"
	"github.com/ssbags/storefront/pkg/pagination"
)

// recentOrders is how many orders the dashboard shows.
const recentOrders = 5

func (c *CLI) adminCommands() []command {
	return []command{
		{"login", "-email e -password pw", "sign in to the admin panel", c.adminLogin},
		{"logout", "", "sign out of the admin panel", c.adminLogout},
		{"dashboard", "", "show totals and recent orders", c.dashboard},
		{"products", "", "list all products", c.adminProducts},
		{"product-add", "-name n -description d -price p -stock s -category-id id [...]", "create a product", c.productAdd},
		{"product-update", "<id> -name n -description d -price p -stock s -category-id id [...]", "replace a product", c.productUpdate},
		{"product-delete", "<id>", "delete a product", c.productDelete},
		{"images", "<product-id>", "list product images", c.images},
		{"upload", "<product-id> <file>...", "upload up to 5 images", c.upload},
		{"image-delete", "<product-id> <image-id>", "delete a product image", c.imageDelete},
		{"orders", "[-status s] [-page n -per-page n]", "list orders", c.adminOrders},
		{"order-status", "<order-id> <status>", "set an order status", c.orderStatus},
		{"customers", "", "list customers", c.customers},
		{"deactivate", "<customer-id>", "deactivate a customer", c.deactivate},
		{"report", "[-period daily|monthly]", "show a sales report", c.report},
	}
}

// adminAPI returns an admin client, or an error when no admin is signed in.
func (c *CLI) adminAPI() (*api.Admin, error) {
	if !c.Session.IsAdmin() {
		return nil, apperrors.Unauthorized("Admin login required")
	}
	return c.API.Admin(c.Session.AdminToken()), nil
}

func (c *CLI) adminLogin(ctx context.Context, args []string) error {
	fs := c.newFlags("admin login")
	email := fs.String("email", "", "admin email")
	password := fs.String("password", "", "admin password")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := c.Session.AdminLogin(ctx, *email, *password); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Admin login successful")
	return nil
}

func (c *CLI) adminLogout(ctx context.Context, _ []string) error {
	if err := c.Session.AdminLogout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Logged out of the admin panel")
	return nil
}

func (c *CLI) dashboard(ctx context.Context, _ []string) error {
	admin, err := c.adminAPI()
	if err != nil {
		return err
	}
	stats, err := admin.Stats(ctx)
	if err != nil {
		return err
	}
	recent, err := admin.Orders(ctx, recentOrders)
	if err != nil {
		return err
	}
	return view.Dashboard(c.out, stats, recent)
}

func (c *CLI) adminProducts(ctx context.Context, _ []string) error {
	if _, err := c.adminAPI(); err != nil {
		return err
	}
	products, err := c.API.ListProducts(ctx)
	if err != nil {
		return err
	}
	c.Products.Set(products)
	return view.Products(c.out, products)
}

// productForm parses the product flags in args into a ProductInput.
func (c *CLI) productForm(ctx context.Context, name string, args []string) (domain.ProductInput, error) {
	fs := c.newFlags(name)
	var in domain.ProductInput
	var price string
	fs.StringVar(&in.Name, "name", "", "product name")
	fs.StringVar(&in.Description, "description", "", "description")
	fs.StringVar(&price, "price", "", "price in rupees")
	fs.IntVar(&in.Stock, "stock", 0, "units in stock")
	fs.StringVar(&in.Category, "category", "", "category name")
	fs.IntVar(&in.CategoryID, "category-id", 0, "category id")
	fs.StringVar(&in.Color, "color", "", "color")
	fs.StringVar(&in.Material, "material", "", "material")
	fs.StringVar(&in.Size, "size", "", "size")
	if err := parseFlags(fs, args); err != nil {
		return domain.ProductInput{}, err
	}
	if price != "" {
		p, err := decimal.NewFromString(price)
		if err != nil {
			return domain.ProductInput{}, usageError("price must be a number, got %q", price)
		}
		in.Price = p
	}
	if in.Category == "" && in.CategoryID > 0 {
		in.Category = c.categoryName(ctx, in.CategoryID)
	}
	return in, nil
}

// categoryName looks up a category name so the form only needs the id.
func (c *CLI) categoryName(ctx context.Context, id int) string {
	cats, err := c.API.Categories(ctx)
	if err != nil {
		return ""
	}
	for _, cat := range cats {
		if cat.ID == id {
			return cat.Name
		}
	}
	return ""
}

func (c *CLI) productAdd(ctx context.Context, args []string) error {
	admin, err := c.adminAPI()
	if err != nil {
		return err
	}
	in, err := c.productForm(ctx, "admin product-add", args)
	if err != nil {
		return err
	}
	id, err := admin.CreateProduct(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Product created with id %d\n", id)
	return nil
}

func (c *CLI) productUpdate(ctx context.Context, args []string) error {
	admin, err := c.adminAPI()
	if err != nil {
		return err
	}
	id, err := intArg(args, 0, "product id")
	if err != nil {
		return err
	}
	in, err := c.productForm(ctx, "admin product-update", args[1:])
	if err != nil {
		return err
	}
	if err := admin.UpdateProduct(ctx, id, in); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Product updated")
	return nil
}

func (c *CLI) productDelete(ctx context.Context, args []string) error {
	admin, err := c.adminAPI()
	if err != nil {
		return err
	}
	id, err := intArg(args, 0, "product id")
	if err != nil {
		return err
	}
	if err := admin.DeleteProduct(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Product deleted")
	return nil
}

func (c *CLI) images(ctx context.Context, args []string) error {
	id, err := intArg(args, 0, "product id")
	if err != nil {
		return err
	}
	images, err := c.API.ProductImages(ctx, id)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		fmt.Fprintln(c.out, "No images")
		return nil
	}
	for _, img := range images {
		primary := ""
		if img.IsPrimary {
			primary = " (primary)"
		}
		fmt.Fprintf(c.out, "%d  %s%s\n", img.ID, img.URL, primary)
	}
	return nil
}

func (c *CLI) upload(ctx context.Context, args []string) error {
	admin, err := c.adminAPI()
	if err != nil {
		return err
	}
	id, err := intArg(args, 0, "product id")
	if err != nil {
		return err
	}
	paths := args[1:]
	if len(paths) == 0 {
		return usageError("no image files given")
	}
	files := make([]api.ImageFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		files = append(files, api.ImageFile{Name: filepath.Base(p), Data: data})
	}
	urls, err := admin.UploadProductImages(ctx, id, files)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%d images uploaded successfully\n", len(urls))
	for _, u := range urls {
		fmt.Fprintln(c.out, u)
	}
	return nil
}

func (c *CLI) imageDelete(ctx context.Context, args []string) error {
	admin, err := c.adminAPI()
	if err != nil {
		return err
	}
	productID, err := intArg(args, 0, "product id")
	if err != nil {
		return err
	}
	imageID, err := intArg(args, 1, "image id")
	if err != nil {
		return err
	}
	if err := admin.DeleteProductImage(ctx, productID, imageID); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Image deleted successfully")
	return nil
}

func (c *CLI) adminOrders(ctx context.Context, args []string) error {
	fs := c.newFlags("admin orders")
	status := fs.String("status", "", "only orders with this status")
	page := pageFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	admin, err := c.adminAPI()
	if err != nil {
		return err
	}
	orders, err := admin.Orders(ctx, 0)
	if err != nil {
		return err
	}
	result := pagination.Paginate(domain.FilterOrdersByStatus(orders, *status), page())
	if err := view.AdminOrders(c.out, result.Data); err != nil {
		return err
	}
	pageFooter(c.out, result)
	return nil
}

func (c *CLI) orderStatus(ctx context.Context, args []string) error {
	admin, err := c.adminAPI()
	if err != nil {
		return err
	}
	id, err := intArg(args, 0, "order id")
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return usageError("missing status (one of %v)", domain.OrderStatuses)
	}
	if err := admin.UpdateOrderStatus(ctx, id, args[1]); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Order status updated successfully")
	return nil
}

func (c *CLI) customers(ctx context.Context, _ []string) error {
	admin, err := c.adminAPI()
	if err != nil {
		return err
	}
	customers, err := admin.Customers(ctx)
	if err != nil {
		return err
	}
	return view.Customers(c.out, customers)
}

func (c *CLI) deactivate(ctx context.Context, args []string) error {
	admin, err := c.adminAPI()
	if err != nil {
		return err
	}
	id, err := intArg(args, 0, "customer id")
	if err != nil {
		return err
	}
	if err := admin.DeactivateCustomer(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Customer deactivated successfully")
	return nil
}

func (c *CLI) report(ctx context.Context, args []string) error {
	fs := c.newFlags("admin report")
	period := fs.String("period", domain.PeriodDaily, "daily or monthly")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	admin, err := c.adminAPI()
	if err != nil {
		return err
	}
	report, err := admin.Report(ctx, *period)
	if err != nil {
		return err
	}
	return view.Report(c.out, *period, report)
}
