package usecase

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/bakehouse/internal/domain/model"
)

type receipt struct {
	lines     []model.CartLine
	totals    model.Totals
	coupon    *model.Coupon
	mode      model.DeliveryMode
	payment   model.PaymentMethod
	changeFor decimal.Decimal
	note      string
}

// composeDescription renders the order text read back by every later view.
// Each cart line is its own entry, customized lines included.
func composeDescription(r receipt) string {
	var b strings.Builder
	for _, l := range r.lines {
		fmt.Fprintf(&b, "%dx %s @ %s = %s\n", l.Quantity, l.Product.Name, money(l.UnitPrice()), money(l.Total()))
		if details := describeCustomization(l.Customization); details != "" {
			fmt.Fprintf(&b, "   %s\n", details)
		}
	}

	fmt.Fprintf(&b, "Subtotal: %s\n", money(r.totals.Subtotal))
	if r.coupon != nil && r.totals.Discount.IsPositive() {
		fmt.Fprintf(&b, "Discount (%s): -%s\n", r.coupon.Code, money(r.totals.Discount))
	}
	if r.mode == model.DeliveryModeDeliver {
		fmt.Fprintf(&b, "Delivery fee: %s\n", money(r.totals.DeliveryFee))
	} else {
		b.WriteString("Pickup at the counter\n")
	}
	fmt.Fprintf(&b, "Total: %s\n", money(r.totals.Total))

	fmt.Fprintf(&b, "Payment: %s", r.payment)
	if r.payment == model.PaymentCash && r.changeFor.IsPositive() {
		fmt.Fprintf(&b, " (change for %s, change due %s)", money(r.changeFor), money(r.changeFor.Sub(r.totals.Total)))
	}
	b.WriteString("\n")

	if note := strings.TrimSpace(r.note); note != "" {
		fmt.Fprintf(&b, "Note: %s\n", note)
	}
	return strings.TrimRight(b.String(), "\n")
}

func describeCustomization(c model.Customization) string {
	var parts []string
	for _, o := range c.Options {
		parts = append(parts, fmt.Sprintf("%s: %s", o.Group, o.Name))
	}
	if len(c.Addons) > 0 {
		names := make([]string, 0, len(c.Addons))
		for _, a := range c.Addons {
			names = append(names, a.Name)
		}
		parts = append(parts, "extras: "+strings.Join(names, ", "))
	}
	if note := strings.TrimSpace(c.Note); note != "" {
		parts = append(parts, "note: "+note)
	}
	return strings.Join(parts, "; ")
}

func money(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}

// snapshotLines keeps what "repeat last order" needs to rebuild the cart.
func snapshotLines(lines []model.CartLine) []model.OrderLine {
	out := make([]model.OrderLine, 0, len(lines))
	for _, l := range lines {
		ol := model.OrderLine{
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice(),
			Note:        l.Customization.Note,
		}
		for _, o := range l.Customization.Options {
			ol.OptionIDs = append(ol.OptionIDs, o.ID)
		}
		for _, a := range l.Customization.Addons {
			ol.AddonIDs = append(ol.AddonIDs, a.ID)
		}
		out = append(out, ol)
	}
	return out
}
