package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/polkiloo/bakehouse/internal/cart"
	domainErrors "github.com/polkiloo/bakehouse/internal/domain/errors"
	"github.com/polkiloo/bakehouse/internal/domain/model"
	"github.com/polkiloo/bakehouse/internal/domain/repository"
	"github.com/polkiloo/bakehouse/internal/pricing"
	"github.com/polkiloo/bakehouse/internal/session"
)

const maxNoteLength = 280

// AddItemInput selects a product and its customization by catalog ids.
type AddItemInput struct {
	ProductID int64
	OptionIDs []int64
	AddonIDs  []int64
	Note      string
}

// CartView is the cart with the totals recomputed for display.
type CartView struct {
	Lines     []model.CartLine
	Coupon    *model.Coupon
	Mode      model.DeliveryMode
	ItemCount int
	Totals    model.Totals
}

// CartUseCase mutates the session cart and prices it after every change.
type CartUseCase struct {
	sessions  *session.Manager
	products  repository.ProductRepository
	coupons   repository.CouponRepository
	customers repository.CustomerRepository
	quoter    *Quoter
	now       func() time.Time
}

// NewCartUseCase constructs CartUseCase.
func NewCartUseCase(
	sessions *session.Manager,
	products repository.ProductRepository,
	coupons repository.CouponRepository,
	customers repository.CustomerRepository,
	quoter *Quoter,
) *CartUseCase {
	return &CartUseCase{
		sessions:  sessions,
		products:  products,
		coupons:   coupons,
		customers: customers,
		quoter:    quoter,
		now:       time.Now,
	}
}

// View prices the stored cart.
func (u *CartUseCase) View(ctx context.Context, customerID int64) (*CartView, error) {
	s, err := u.sessions.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return u.view(ctx, customerID, s.Cart)
}

// AddItem adds one unit of a product with the resolved customization.
func (u *CartUseCase) AddItem(ctx context.Context, customerID int64, in AddItemInput) (*CartView, error) {
	product, err := u.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	custom, err := resolveCustomization(*product, in.OptionIDs, in.AddonIDs, in.Note)
	if err != nil {
		return nil, err
	}
	return u.mutate(ctx, customerID, func(c *cart.Cart) error {
		return c.AddItem(*product, custom)
	})
}

// Increment adds one unit to a line after refreshing the product stock.
func (u *CartUseCase) Increment(ctx context.Context, customerID int64, index int) (*CartView, error) {
	return u.mutate(ctx, customerID, func(c *cart.Cart) error {
		if index < 0 || index >= len(c.Lines) {
			return domainErrors.ErrInvalidLine
		}
		productID := c.Lines[index].Product.ID
		product, err := u.products.GetByID(ctx, productID)
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.RefreshStock(productID, 0)
		case err != nil:
			return err
		default:
			c.RefreshStock(productID, product.Stock)
		}
		return c.Increment(index)
	})
}

// Decrement removes one unit from a line.
func (u *CartUseCase) Decrement(ctx context.Context, customerID int64, index int) (*CartView, error) {
	return u.mutate(ctx, customerID, func(c *cart.Cart) error {
		return c.Decrement(index)
	})
}

// Clear empties the cart.
func (u *CartUseCase) Clear(ctx context.Context, customerID int64) (*CartView, error) {
	return u.mutate(ctx, customerID, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
}

// SetMode selects deliver or pickup.
func (u *CartUseCase) SetMode(ctx context.Context, customerID int64, mode model.DeliveryMode) (*CartView, error) {
	return u.mutate(ctx, customerID, func(c *cart.Cart) error {
		return c.SetMode(mode)
	})
}

// ApplyCoupon validates code and attaches it. On failure the previously
// applied coupon stays attached.
func (u *CartUseCase) ApplyCoupon(ctx context.Context, customerID int64, code string) (*CartView, error) {
	coupon, err := lookupCoupon(ctx, u.coupons, code, u.now())
	if err != nil {
		return nil, err
	}
	return u.mutate(ctx, customerID, func(c *cart.Cart) error {
		c.ApplyCoupon(*coupon)
		return nil
	})
}

// RemoveCoupon detaches the coupon.
func (u *CartUseCase) RemoveCoupon(ctx context.Context, customerID int64) (*CartView, error) {
	return u.mutate(ctx, customerID, func(c *cart.Cart) error {
		c.RemoveCoupon()
		return nil
	})
}

func (u *CartUseCase) mutate(ctx context.Context, customerID int64, fn func(*cart.Cart) error) (*CartView, error) {
	s, err := u.sessions.Update(ctx, customerID, func(s *session.Session) error {
		return fn(s.Cart)
	})
	if err != nil {
		return nil, err
	}
	return u.view(ctx, customerID, s.Cart)
}

func (u *CartUseCase) view(ctx context.Context, customerID int64, c *cart.Cart) (*CartView, error) {
	mode := c.DeliveryMode()
	delivery := pricing.Pickup()
	if mode == model.DeliveryModeDeliver {
		customer, err := u.customers.GetByID(ctx, customerID)
		if err != nil {
			return nil, fmt.Errorf("load customer: %w", err)
		}
		if delivery, err = u.quoter.Delivery(ctx, customer.Address, mode); err != nil {
			return nil, err
		}
	}
	return &CartView{
		Lines:     c.Lines,
		Coupon:    c.Coupon,
		Mode:      mode,
		ItemCount: c.ItemCount(),
		Totals:    pricing.Compute(c.Lines, c.Coupon, delivery),
	}, nil
}

// resolveCustomization maps catalog ids to priced options and addons.
// At most one option per group is accepted.
func resolveCustomization(p model.Product, optionIDs, addonIDs []int64, note string) (model.Customization, error) {
	var custom model.Customization

	groups := make(map[string]struct{}, len(optionIDs))
	for _, id := range optionIDs {
		o, ok := p.FindOption(id)
		if !ok {
			return model.Customization{}, domainErrors.NewValidationError("customization", fmt.Sprintf("unknown option %d", id))
		}
		if _, dup := groups[o.Group]; dup {
			return model.Customization{}, domainErrors.NewValidationError("customization", "more than one option in group "+o.Group)
		}
		groups[o.Group] = struct{}{}
		custom.Options = append(custom.Options, o)
	}

	seen := make(map[int64]struct{}, len(addonIDs))
	for _, id := range addonIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		a, ok := p.FindAddon(id)
		if !ok {
			return model.Customization{}, domainErrors.NewValidationError("customization", fmt.Sprintf("unknown addon %d", id))
		}
		seen[id] = struct{}{}
		custom.Addons = append(custom.Addons, a)
	}

	custom.Note = strings.TrimSpace(note)
	if utf8.RuneCountInString(custom.Note) > maxNoteLength {
		return model.Customization{}, domainErrors.NewValidationError("note", "too long")
	}
	return custom, nil
}
