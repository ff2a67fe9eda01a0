package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/angelmondragon/moda-storefront/internal/catalog"
	"github.com/angelmondragon/moda-storefront/internal/checkout"
	"github.com/angelmondragon/moda-storefront/internal/storefront"
	"github.com/angelmondragon/moda-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/moda-storefront/pkg/errors"
	"github.com/angelmondragon/moda-storefront/pkg/validators"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/shopspring/decimal"
)

const helpText = `commands:
  list [term]              show products, optionally filtered by term
  category <name|all>      filter the listing by category
  sort <order>             alphaAsc, alphaDesc, priceAsc, priceDesc or none
  categories               show product categories
  new <name>;<price>;<stock>;<category>
  add <product>            add one unit (id or name)
  inc <product> / dec <product>
  rm <product>             remove the line
  clear                    empty the cart and drop the coupon
  coupon <code>            apply a coupon
  cart                     show cart and totals
  profile [field value]    show or update buyer profile (name, email, address, payment, installments)
  checkout                 place the order with the saved profile
  orders                   show order history
  metrics                  dump session metrics
  quit`

// shell is the line oriented front end over a storefront session.
type shell struct {
	session  *storefront.Session
	out      io.Writer
	gatherer prometheus.Gatherer
	query    catalog.Query
}

func newShell(session *storefront.Session, out io.Writer, gatherer prometheus.Gatherer) *shell {
	return &shell{session: session, out: out, gatherer: gatherer}
}

// Run reads commands from in until EOF or quit.
func (sh *shell) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	sh.printf("moda storefront. type help for commands.\n> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			return nil
		}
		if line != "" {
			if err := sh.exec(ctx, line); err != nil && !sh.report(err) {
				return err
			}
		}
		sh.printf("> ")
	}
	return scanner.Err()
}

// exec runs one command. Only storage failures are returned; user errors are
// printed.
func (sh *shell) exec(ctx context.Context, line string) error {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	cart := sh.session.Cart

	switch strings.ToLower(cmd) {
	case "help":
		sh.printf("%s\n", helpText)
	case "list":
		sh.query.Term = arg
		sh.list()
	case "category":
		sh.query.Category = arg
		sh.list()
	case "sort":
		if arg == "" || arg == "none" {
			sh.query.Sort = ""
		} else {
			order, err := enums.ParseSortOrder(arg)
			if err != nil {
				sh.printf("%v\n", err)
				return nil
			}
			sh.query.Sort = order
		}
		sh.list()
	case "categories":
		sh.printf("%s\n", strings.Join(sh.session.Catalog.Categories(), ", "))
	case "new":
		return sh.newProduct(ctx, arg)
	case "add", "inc", "dec", "rm":
		id, ok := sh.resolve(arg)
		if !ok {
			sh.printf("unknown product %q\n", arg)
			return nil
		}
		var err error
		switch cmd {
		case "add":
			err = cart.AddItem(ctx, id)
		case "inc":
			err = cart.ChangeQuantity(ctx, id, 1)
		case "dec":
			err = cart.ChangeQuantity(ctx, id, -1)
		case "rm":
			err = cart.RemoveItem(ctx, id)
		}
		if err != nil {
			return err
		}
		sh.showCart()
	case "clear":
		if err := cart.Clear(ctx); err != nil {
			return err
		}
		sh.showCart()
	case "coupon":
		res, err := cart.ApplyCoupon(ctx, arg)
		if err != nil {
			return err
		}
		if res.Applied {
			sh.printf("coupon applied: %s\n", res.Code)
		} else {
			sh.printf("coupon rejected: %s\n", res.Reason)
		}
		sh.showCart()
	case "cart":
		sh.showCart()
	case "profile":
		return sh.profile(ctx, arg)
	case "checkout":
		return sh.checkout(ctx)
	case "orders":
		return sh.orders(ctx)
	case "metrics":
		return sh.metrics()
	default:
		sh.printf("unknown command %q, type help\n", cmd)
	}
	return nil
}

func (sh *shell) list() {
	products := sh.session.Catalog.Filter(sh.query)
	if len(products) == 0 {
		sh.printf("no products match\n")
		return
	}
	for _, p := range products {
		sh.printf("%-36s  %-12s %-10s %12s  stock %d\n", p.ID, p.Name, p.Category, sh.session.Formatter.Format(p.Price), p.Stock)
	}
}

// resolve accepts a product id or a product name.
func (sh *shell) resolve(arg string) (string, bool) {
	if arg == "" {
		return "", false
	}
	if p, ok := sh.session.Catalog.Find(arg); ok {
		return p.ID, true
	}
	for _, p := range sh.session.Catalog.List() {
		if strings.EqualFold(p.Name, arg) {
			return p.ID, true
		}
	}
	return "", false
}

func (sh *shell) showCart() {
	cart := sh.session.Cart
	f := sh.session.Formatter
	items := cart.Items()
	if len(items) == 0 {
		sh.printf("cart is empty\n")
	}
	for _, item := range items {
		sh.printf("%-12s x%-3d %12s  %12s\n", item.Name, item.Qty, f.Format(item.UnitPrice), f.Format(item.LineTotal()))
	}
	totals := cart.Totals()
	if c, ok := cart.ActiveCoupon(); ok {
		sh.printf("coupon: %s\n", c.Code)
	}
	sh.printf("items %d  subtotal %s  discount %s  total %s\n",
		totals.ItemCount, f.Format(totals.Subtotal), f.Format(totals.Discount), f.Format(totals.Total))
}

func (sh *shell) newProduct(ctx context.Context, arg string) error {
	parts := strings.Split(arg, ";")
	for len(parts) < 4 {
		parts = append(parts, "")
	}
	input := catalog.NewProductInput{Name: parts[0], Category: parts[3]}
	price, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		price = decimal.Zero
	}
	input.Price = price
	stock, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		stock = -1
	}
	input.Stock = stock

	p, err := sh.session.AddProduct(ctx, input)
	if messages := validators.MessagesOf(err); len(messages) > 0 {
		for _, msg := range messages {
			sh.printf("- %s\n", msg)
		}
		return nil
	}
	if err != nil {
		return err
	}
	sh.printf("added %s (%s)\n", p.Name, p.ID)
	return nil
}

func (sh *shell) profile(ctx context.Context, arg string) error {
	info, err := sh.session.Profiles.Load(ctx)
	if err != nil {
		return err
	}
	if arg != "" {
		field, value, _ := strings.Cut(arg, " ")
		value = strings.TrimSpace(value)
		switch strings.ToLower(field) {
		case "name":
			info.Name = value
		case "email":
			info.Email = value
		case "address":
			info.Address = value
		case "payment":
			payment, err := enums.ParsePaymentMethod(strings.ToLower(value))
			if err != nil {
				sh.printf("%v\n", err)
				return nil
			}
			info.Payment = payment
		case "installments":
			n, err := strconv.Atoi(value)
			if err != nil {
				sh.printf("installments must be a number\n")
				return nil
			}
			info.Installments = n
		default:
			sh.printf("unknown profile field %q\n", field)
			return nil
		}
		if err := sh.session.Profiles.Save(ctx, info); err != nil {
			return err
		}
		info = info.Normalize()
	}
	sh.printf("name: %s\nemail: %s\naddress: %s\npayment: %s\ninstallments: %d\n",
		info.Name, info.Email, info.Address, info.Payment, info.Installments)
	return nil
}

func (sh *shell) checkout(ctx context.Context) error {
	buyer, err := sh.session.Profiles.Load(ctx)
	if err != nil {
		return err
	}
	sh.printf("processing...\n")
	res, err := sh.session.Checkout.Checkout(ctx, checkout.Request{Buyer: buyer, SaveProfile: true})
	if messages := validators.MessagesOf(err); len(messages) > 0 {
		for _, msg := range messages {
			sh.printf("- %s\n", msg)
		}
		return nil
	}
	if err != nil {
		return err
	}
	sh.printf("order %s confirmed, total %s\n", res.Order.ID, res.FormattedTotal)
	return nil
}

func (sh *shell) orders(ctx context.Context) error {
	history, err := sh.session.Orders.History(ctx)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		sh.printf("no orders yet\n")
		return nil
	}
	for _, o := range history {
		coupon := "-"
		if o.Coupon != nil {
			coupon = *o.Coupon
		}
		sh.printf("%s  %s  items %d  coupon %s  total %s\n",
			o.ID, o.CreatedAt.Local().Format("2006-01-02 15:04"), o.ItemCount(), coupon, sh.session.Formatter.Format(o.Total))
	}
	return nil
}

// report prints a typed error with its public message and reports whether the
// shell can keep reading commands. Untyped errors end the session.
func (sh *shell) report(err error) bool {
	typed := pkgerrors.As(err)
	if typed == nil {
		return false
	}
	meta := pkgerrors.MetadataFor(typed.Code())
	msg := meta.PublicMessage
	if meta.DetailsAllowed && typed.Message() != "" {
		msg += ": " + typed.Message()
	}
	if meta.Retryable {
		msg += " (try again)"
	}
	sh.printf("error: %s\n", msg)
	return true
}

func (sh *shell) metrics() error {
	if sh.gatherer == nil {
		sh.printf("metrics unavailable\n")
		return nil
	}
	families, err := sh.gatherer.Gather()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "gather metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(sh.out, mf); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write metrics")
		}
	}
	return nil
}

func (sh *shell) printf(format string, args ...any) {
	fmt.Fprintf(sh.out, format, args...)
}
