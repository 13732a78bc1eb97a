package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"storefront/internal/cart"
	"storefront/internal/client"
	"storefront/internal/format"
	"storefront/internal/orders"
	"storefront/internal/products"
)

func addPageFlags(cmd *cobra.Command, p *client.PageParams) {
	cmd.Flags().IntVar(&p.Page, "page", 0, "page number")
	cmd.Flags().IntVar(&p.PageSize, "page-size", 0, "results per page")
}

func table(w io.Writer, header string, rows func(tw *tabwriter.Writer)) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	tw.Flush()
}

func newProductsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the catalogue",
	}

	var params products.ListParams
	list := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := e.app.Products.List(e.ctx(cmd), params)
			if err != nil {
				return err
			}
			return e.print(page, func(w io.Writer) {
				table(w, "ID\tNAME\tPRICE\tSTOCK\tSALES", func(tw *tabwriter.Writer) {
					for _, p := range page.Results {
						fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\n", p.ID, p.Name, format.Amount(p.Price), p.Stock, p.Sales)
					}
				})
			})
		},
	}
	addPageFlags(list, &params.PageParams)
	list.Flags().StringVar(&params.Search, "search", "", "search term")
	list.Flags().Int64Var(&params.Category, "category", 0, "category id")
	list.Flags().StringVar(&params.Ordering, "ordering", "", "sort field, prefix with - for descending")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: idArg(func(cmd *cobra.Command, id int64) error {
			p, err := e.app.Products.Get(e.ctx(cmd), id)
			if err != nil {
				return err
			}
			return e.print(p, func(w io.Writer) {
				fmt.Fprintf(w, "%s (#%d)\nprice: %s\nstock: %d\nimage: %s\n", p.Name, p.ID, format.Amount(p.Price), p.Stock, p.MainImage())
			})
		}),
	}

	categories := &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := e.app.Products.Categories(e.ctx(cmd))
			if err != nil {
				return err
			}
			return e.print(page, nil)
		},
	}

	var reviewPage client.PageParams
	reviews := &cobra.Command{
		Use:   "reviews <product-id>",
		Short: "List reviews of a product",
		Args:  cobra.ExactArgs(1),
		RunE: idArg(func(cmd *cobra.Command, id int64) error {
			page, err := e.app.Products.Reviews(e.ctx(cmd), id, reviewPage)
			if err != nil {
				return err
			}
			now := time.Now()
			return e.print(page, func(w io.Writer) {
				for _, r := range page.Results {
					fmt.Fprintf(w, "%s  %d/5  %s (%s)\n", r.Username, r.Rating, r.Content, format.Relative(r.CreatedAt, now))
				}
			})
		}),
	}
	addPageFlags(reviews, &reviewPage)

	var input products.ReviewInput
	review := &cobra.Command{
		Use:   "review <product-id>",
		Short: "Review a product",
		Args:  cobra.ExactArgs(1),
		RunE: idArg(func(cmd *cobra.Command, id int64) error {
			if input.Rating < 1 || input.Rating > 5 {
				return fmt.Errorf("rating must be between 1 and 5")
			}
			created, err := e.app.Products.CreateReview(e.ctx(cmd), id, input)
			if err != nil {
				return err
			}
			return e.print(created, nil)
		}),
	}
	review.Flags().IntVar(&input.Rating, "rating", 5, "rating from 1 to 5")
	review.Flags().StringVar(&input.Content, "content", "", "review text")

	cmd.AddCommand(list, show, categories, reviews, review)
	return cmd
}

func newCartCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping cart",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := e.app.Cart.List(e.ctx(cmd))
			if err != nil {
				return err
			}
			return e.print(page, func(w io.Writer) {
				table(w, "ID\tPRODUCT\tQTY\tSELECTED\tTOTAL", func(tw *tabwriter.Writer) {
					for _, it := range page.Results {
						name := ""
						if it.Product != nil {
							name = it.Product.Name
						}
						fmt.Fprintf(tw, "%d\t%s\t%d\t%t\t%s\n", it.ID, name, it.Quantity, it.Selected, format.Amount(it.TotalPrice))
					}
				})
			})
		},
	}

	var quantity int
	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: idArg(func(cmd *cobra.Command, id int64) error {
			item, err := e.app.Cart.Add(e.ctx(cmd), cart.NewItem{ProductID: id, Quantity: quantity})
			if err != nil {
				return err
			}
			return e.print(item, nil)
		}),
	}
	add.Flags().IntVarP(&quantity, "quantity", "q", 1, "quantity")

	var upd cart.ItemUpdate
	var selected bool
	update := &cobra.Command{
		Use:   "update <item-id>",
		Short: "Change quantity or selection of a cart line",
		Args:  cobra.ExactArgs(1),
		RunE: idArg(func(cmd *cobra.Command, id int64) error {
			if cmd.Flags().Changed("selected") {
				upd.Selected = &selected
			}
			item, err := e.app.Cart.Update(e.ctx(cmd), id, upd)
			if err != nil {
				return err
			}
			return e.print(item, nil)
		}),
	}
	update.Flags().IntVarP(&upd.Quantity, "quantity", "q", 1, "quantity")
	update.Flags().BoolVar(&selected, "selected", true, "include the line in checkout")

	remove := &cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove a cart line",
		Args:  cobra.ExactArgs(1),
		RunE: idArg(func(cmd *cobra.Command, id int64) error {
			if err := e.app.Cart.Remove(e.ctx(cmd), id); err != nil {
				return err
			}
			return e.print(map[string]int64{"removed": id}, nil)
		}),
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.app.Cart.Clear(e.ctx(cmd)); err != nil {
				return err
			}
			return e.print(map[string]bool{"cleared": true}, nil)
		},
	}

	count := &cobra.Command{
		Use:   "count",
		Short: "Number of items in the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := e.app.Cart.Count(e.ctx(cmd))
			if err != nil {
				return err
			}
			return e.print(map[string]int{"count": n}, func(w io.Writer) { fmt.Fprintln(w, n) })
		},
	}

	cmd.AddCommand(list, add, update, remove, clearCmd, count)
	return cmd
}

// parseLineItems reads product:quantity pairs; a bare product id means quantity 1
func parseLineItems(pairs []string) ([]orders.LineItem, error) {
	items := make([]orders.LineItem, 0, len(pairs))
	for _, pair := range pairs {
		idPart, qtyPart, hasQty := strings.Cut(pair, ":")
		id, err := parseID(idPart)
		if err != nil {
			return nil, err
		}
		qty := 1
		if hasQty {
			qty, err = strconv.Atoi(qtyPart)
			if err != nil || qty <= 0 {
				return nil, fmt.Errorf("invalid quantity in %q", pair)
			}
		}
		items = append(items, orders.LineItem{ProductID: id, Quantity: qty})
	}
	return items, nil
}

func printOrders(w io.Writer, list []orders.Order) {
	table(w, "ID\tNUMBER\tSTATUS\tTOTAL\tCREATED", func(tw *tabwriter.Writer) {
		for _, o := range list {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", o.ID, o.OrderNo, o.Status, format.Amount(o.TotalAmount), format.DateTime(o.CreatedAt))
		}
	})
}

func newOrdersCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Place and track orders",
	}

	var params orders.ListParams
	var statusFilter int
	list := &cobra.Command{
		Use:   "list",
		Short: "List orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("status") {
				s := orders.Status(statusFilter)
				params.Status = &s
			}
			page, err := e.app.Orders.List(e.ctx(cmd), params)
			if err != nil {
				return err
			}
			return e.print(page, func(w io.Writer) { printOrders(w, page.Results) })
		},
	}
	addPageFlags(list, &params.PageParams)
	list.Flags().IntVar(&statusFilter, "status", 0, "0 pending payment, 1 pending shipment, 2 shipped, 3 completed, 4 cancelled")
	list.Flags().StringVar(&params.Search, "search", "", "order number search")
	list.Flags().StringVar(&params.Ordering, "ordering", "", "sort field")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: idArg(func(cmd *cobra.Command, id int64) error {
			o, err := e.app.Orders.Get(e.ctx(cmd), id)
			if err != nil {
				return err
			}
			return e.print(o, func(w io.Writer) {
				printOrders(w, []orders.Order{*o})
				for _, it := range o.Items {
					fmt.Fprintf(w, "  %s x%d  %s\n", it.ProductName, it.Quantity, format.Amount(it.TotalPrice))
				}
			})
		}),
	}

	var order orders.NewOrder
	var itemPairs []string
	var couponID int64
	create := &cobra.Command{
		Use:   "create",
		Short: "Place an order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := parseLineItems(itemPairs)
			if err != nil {
				return err
			}
			order.Items = items
			if couponID > 0 {
				order.CouponID = &couponID
			}
			created, err := e.app.Orders.Create(e.ctx(cmd), order)
			if err != nil {
				return err
			}
			return e.print(created, nil)
		},
	}
	create.Flags().Int64Var(&order.AddressID, "address", 0, "shipping address id")
	create.Flags().StringSliceVar(&itemPairs, "item", nil, "product:quantity, repeatable")
	create.Flags().Int64Var(&couponID, "coupon", 0, "user coupon id")
	create.Flags().StringVar(&order.PaymentMethod, "payment", orders.PaymentAlipay, "payment method (alipay or wechat)")
	create.Flags().StringVar(&order.Remark, "remark", "", "note for the seller")
	_ = create.MarkFlagRequired("address")
	_ = create.MarkFlagRequired("item")

	cancel := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel an unpaid order",
		Args:  cobra.ExactArgs(1),
		RunE: idArg(func(cmd *cobra.Command, id int64) error {
			ack, err := e.app.Orders.Cancel(e.ctx(cmd), id)
			if err != nil {
				return err
			}
			return e.print(ack, nil)
		}),
	}

	var method string
	pay := &cobra.Command{
		Use:   "pay <id>",
		Short: "Pay for an order",
		Args:  cobra.ExactArgs(1),
		RunE: idArg(func(cmd *cobra.Command, id int64) error {
			res, err := e.app.Orders.Pay(e.ctx(cmd), id, orders.Payment{PaymentMethod: method})
			if err != nil {
				return err
			}
			return e.print(res, nil)
		}),
	}
	pay.Flags().StringVar(&method, "method", orders.PaymentAlipay, "payment method (alipay or wechat)")

	paymentStatus := &cobra.Command{
		Use:   "status <id>",
		Short: "Show the payment status of an order",
		Args:  cobra.ExactArgs(1),
		RunE: idArg(func(cmd *cobra.Command, id int64) error {
			st, err := e.app.Orders.PaymentStatus(e.ctx(cmd), id)
			if err != nil {
				return err
			}
			return e.print(st, nil)
		}),
	}

	receive := &cobra.Command{
		Use:   "receive <id>",
		Short: "Confirm an order was delivered",
		Args:  cobra.ExactArgs(1),
		RunE: idArg(func(cmd *cobra.Command, id int64) error {
			ack, err := e.app.Orders.ConfirmReceive(e.ctx(cmd), id)
			if err != nil {
				return err
			}
			return e.print(ack, nil)
		}),
	}

	items := &cobra.Command{
		Use:   "products <id>",
		Short: "List the products of an order",
		Args:  cobra.ExactArgs(1),
		RunE: idArg(func(cmd *cobra.Command, id int64) error {
			page, err := e.app.Orders.Products(e.ctx(cmd), id)
			if err != nil {
				return err
			}
			return e.print(page, nil)
		}),
	}

	cmd.AddCommand(list, show, create, cancel, pay, paymentStatus, receive, items)
	return cmd
}
