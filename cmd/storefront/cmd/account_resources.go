package cmd

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storefront/internal/addresses"
	"storefront/internal/format"
	"storefront/internal/orders"
	"storefront/internal/returns"
)

func addAddressFlags(cmd *cobra.Command, in *addresses.Input) {
	cmd.Flags().StringVar(&in.Receiver, "receiver", "", "recipient name")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "recipient phone")
	cmd.Flags().StringVar(&in.Province, "province", "", "province")
	cmd.Flags().StringVar(&in.City, "city", "", "city")
	cmd.Flags().StringVar(&in.District, "district", "", "district")
	cmd.Flags().StringVar(&in.Address, "address", "", "street address")
	cmd.Flags().BoolVar(&in.IsDefault, "default", false, "make this the default address")
}

func newAddressesCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addresses",
		Short: "Manage shipping addresses",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List shipping addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := e.app.Addresses.List(e.ctx(cmd))
			if err != nil {
				return err
			}
			return e.print(page, func(w io.Writer) {
				table(w, "ID\tRECEIVER\tPHONE\tADDRESS\tDEFAULT", func(tw *tabwriter.Writer) {
					for _, a := range page.Results {
						fmt.Fprintf(tw, "%d\t%s\t%s\t%s %s %s %s\t%t\n", a.ID, a.Receiver, a.Phone, a.Province, a.City, a.District, a.Address, a.IsDefault)
					}
				})
			})
		},
	}

	var created addresses.Input
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a shipping address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := e.app.Addresses.Create(e.ctx(cmd), created)
			if err != nil {
				return err
			}
			return e.print(addr, nil)
		},
	}
	addAddressFlags(add, &created)
	for _, name := range []string{"receiver", "phone", "address"} {
		_ = add.MarkFlagRequired(name)
	}

	var changed addresses.Input
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a shipping address",
		Args:  cobra.ExactArgs(1),
		RunE: idArg(func(cmd *cobra.Command, id int64) error {
			addr, err := e.app.Addresses.Update(e.ctx(cmd), id, changed)
			if err != nil {
				return err
			}
			return e.print(addr, nil)
		}),
	}
	addAddressFlags(update, &changed)

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a shipping address",
		Args:  cobra.ExactArgs(1),
		RunE: idArg(func(cmd *cobra.Command, id int64) error {
			if err := e.app.Addresses.Delete(e.ctx(cmd), id); err != nil {
				return err
			}
			return e.print(map[string]int64{"deleted": id}, nil)
		}),
	}

	setDefault := &cobra.Command{
		Use:   "default <id>",
		Short: "Make an address the default",
		Args:  cobra.ExactArgs(1),
		RunE: idArg(func(cmd *cobra.Command, id int64) error {
			ack, err := e.app.Addresses.SetDefault(e.ctx(cmd), id)
			if err != nil {
				return err
			}
			return e.print(ack, nil)
		}),
	}

	cmd.AddCommand(list, add, update, del, setDefault)
	return cmd
}

func newCouponsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coupons",
		Short: "List and use coupons",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all coupons of the user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := e.app.Coupons.List(e.ctx(cmd))
			if err != nil {
				return err
			}
			return e.print(page, nil)
		},
	}

	available := &cobra.Command{
		Use:   "available",
		Short: "List unused coupons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := e.app.Coupons.Available(e.ctx(cmd))
			if err != nil {
				return err
			}
			return e.print(page, func(w io.Writer) {
				table(w, "ID\tNAME\tAMOUNT\tMIN ORDER\tEXPIRES", func(tw *tabwriter.Writer) {
					for _, uc := range page.Results {
						c := uc.Coupon
						fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", uc.ID, c.Name, format.Amount(c.Amount), format.Amount(c.MinAmount), format.Date(c.EndTime))
					}
				})
			})
		},
	}

	use := &cobra.Command{
		Use:   "use <id>",
		Short: "Mark a coupon as used",
		Args:  cobra.ExactArgs(1),
		RunE: idArg(func(cmd *cobra.Command, id int64) error {
			ack, err := e.app.Coupons.Use(e.ctx(cmd), id)
			if err != nil {
				return err
			}
			return e.print(ack, nil)
		}),
	}

	cmd.AddCommand(list, available, use)
	return cmd
}

func newReturnsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "returns",
		Short: "Request returns and exchanges",
	}

	var params returns.ListParams
	var statusFilter, typeFilter int
	list := &cobra.Command{
		Use:   "list",
		Short: "List return requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("status") {
				s := returns.Status(statusFilter)
				params.Status = &s
			}
			params.Type = returns.Type(typeFilter)
			page, err := e.app.Returns.List(e.ctx(cmd), params)
			if err != nil {
				return err
			}
			return e.print(page, func(w io.Writer) {
				table(w, "ID\tORDER\tTYPE\tSTATUS\tCREATED", func(tw *tabwriter.Writer) {
					for _, r := range page.Results {
						orderNo := ""
						if r.Order != nil {
							orderNo = r.Order.OrderNo
						}
						fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", r.ID, orderNo, r.Type, r.Status, format.DateTime(r.CreatedAt))
					}
				})
			})
		},
	}
	addPageFlags(list, &params.PageParams)
	list.Flags().IntVar(&statusFilter, "status", 0, "0 pending, 1 approved, 2 rejected, 3 completed, 4 cancelled")
	list.Flags().IntVar(&typeFilter, "type", 0, "1 return, 2 exchange")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one return request",
		Args:  cobra.ExactArgs(1),
		RunE: idArg(func(cmd *cobra.Command, id int64) error {
			req, err := e.app.Returns.Get(e.ctx(cmd), id)
			if err != nil {
				return err
			}
			return e.print(req, nil)
		}),
	}

	var newReq returns.NewRequest
	var reqType int
	create := &cobra.Command{
		Use:   "create",
		Short: "Open a return or exchange request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			newReq.Type = returns.Type(reqType)
			created, err := e.app.Returns.Create(e.ctx(cmd), newReq)
			if err != nil {
				return err
			}
			return e.print(created, nil)
		},
	}
	create.Flags().Int64Var(&newReq.OrderID, "order", 0, "order id")
	create.Flags().IntVar(&reqType, "type", int(returns.TypeReturn), "1 return, 2 exchange")
	create.Flags().StringVar(&newReq.Reason, "reason", "", "reason for the request")
	create.Flags().StringSliceVar(&newReq.Images, "image", nil, "uploaded image URL, repeatable")
	_ = create.MarkFlagRequired("order")
	_ = create.MarkFlagRequired("reason")

	upload := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image for a return request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := e.app.Returns.UploadImage(e.ctx(cmd), returns.Upload{
				Filename:    filepath.Base(args[0]),
				ContentType: mime.TypeByExtension(filepath.Ext(args[0])),
				Content:     f,
			})
			if err != nil {
				return err
			}
			return e.print(map[string]string{"url": res.Location()}, nil)
		},
	}

	var shipping returns.ShippingInfo
	ship := &cobra.Command{
		Use:   "ship <id>",
		Short: "Submit the carrier details for returned goods",
		Args:  cobra.ExactArgs(1),
		RunE: idArg(func(cmd *cobra.Command, id int64) error {
			ack, err := e.app.Returns.SubmitShipping(e.ctx(cmd), id, shipping)
			if err != nil {
				return err
			}
			return e.print(ack, nil)
		}),
	}
	ship.Flags().StringVar(&shipping.ShippingCompany, "company", "", "carrier name")
	ship.Flags().StringVar(&shipping.ShippingNo, "number", "", "tracking number")
	_ = ship.MarkFlagRequired("company")
	_ = ship.MarkFlagRequired("number")

	var orderSearch string
	eligible := &cobra.Command{
		Use:   "orders",
		Short: "List completed orders eligible for a return",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := e.app.Returns.ReturnableOrders(e.ctx(cmd), orders.ListParams{Search: orderSearch})
			if err != nil {
				return err
			}
			return e.print(page, func(w io.Writer) { printOrders(w, page.Results) })
		},
	}
	eligible.Flags().StringVar(&orderSearch, "search", "", "order number search")

	cmd.AddCommand(list, show, create, upload, ship, eligible)
	return cmd
}
