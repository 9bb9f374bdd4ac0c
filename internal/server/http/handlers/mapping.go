package handlers

import (
	"github.com/shopspring/decimal"

	"github.com/polkiloo/bakehouse/internal/domain/lifecycle"
	"github.com/polkiloo/bakehouse/internal/domain/model"
	"github.com/polkiloo/bakehouse/internal/realtime"
	"github.com/polkiloo/bakehouse/internal/server/http/dto"
	"github.com/polkiloo/bakehouse/internal/usecase"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toProfileResponse(c *model.Customer) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:        c.ID,
		Login:     c.Login,
		Name:      c.Name,
		Phone:     c.Phone,
		Address:   c.Address,
		Role:      string(c.Role),
		CreatedAt: c.CreatedAt,
	}
}

func toOptionResponses(options []model.Option) []dto.ChoiceResponse {
	out := make([]dto.ChoiceResponse, 0, len(options))
	for _, o := range options {
		out = append(out, dto.ChoiceResponse{ID: o.ID, Group: o.Group, Name: o.Name, PriceDelta: money(o.PriceDelta)})
	}
	return out
}

func toAddonResponses(addons []model.Addon) []dto.ChoiceResponse {
	out := make([]dto.ChoiceResponse, 0, len(addons))
	for _, a := range addons {
		out = append(out, dto.ChoiceResponse{ID: a.ID, Name: a.Name, PriceDelta: money(a.PriceDelta)})
	}
	return out
}

func toProductResponse(p model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:      p.ID,
		Name:    p.Name,
		Price:   money(p.Price),
		Stock:   p.Stock,
		Options: toOptionResponses(p.Options),
		Addons:  toAddonResponses(p.Addons),
	}
}

func toTotalsResponse(t model.Totals) dto.TotalsResponse {
	return dto.TotalsResponse{
		Subtotal:         money(t.Subtotal),
		Discount:         money(t.Discount),
		AdjustedSubtotal: money(t.AdjustedSubtotal),
		DeliveryFee:      money(t.DeliveryFee),
		Total:            money(t.Total),
	}
}

func toCartResponse(v *usecase.CartView) dto.CartResponse {
	resp := dto.CartResponse{
		Lines:     make([]dto.LineResponse, 0, len(v.Lines)),
		Mode:      string(v.Mode),
		ItemCount: v.ItemCount,
		Totals:    toTotalsResponse(v.Totals),
	}
	for i, l := range v.Lines {
		line := dto.LineResponse{
			Index:       i,
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			Stock:       l.Product.Stock,
			UnitPrice:   money(l.UnitPrice()),
			Total:       money(l.Total()),
			Note:        l.Customization.Note,
		}
		if len(l.Customization.Options) > 0 {
			line.Options = toOptionResponses(l.Customization.Options)
		}
		if len(l.Customization.Addons) > 0 {
			line.Addons = toAddonResponses(l.Customization.Addons)
		}
		resp.Lines = append(resp.Lines, line)
	}
	if v.Coupon != nil {
		resp.Coupon = &dto.CouponResponse{Code: v.Coupon.Code, Kind: string(v.Coupon.Kind), Magnitude: v.Coupon.Magnitude.String()}
	}
	return resp
}

func toSubmitResponse(r *usecase.SubmitResult) dto.SubmitResponse {
	resp := dto.SubmitResponse{
		OrderID:        r.OrderID,
		Created:        r.Created,
		Totals:         toTotalsResponse(r.Totals),
		PartialFailure: usecase.PartialFailure(r.Steps),
	}
	for _, s := range r.Steps {
		resp.Steps = append(resp.Steps, dto.StepResponse{Step: s.Step, Status: string(s.Status), Attempts: s.Attempts, LastError: s.LastError})
	}
	return resp
}

func toTransitionResponse(r *usecase.TransitionResult) dto.TransitionResponse {
	return dto.TransitionResponse{OrderID: r.OrderID, Applied: r.Applied, Status: string(r.Status)}
}

func toOrderResponse(o model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:              o.ID,
		Status:          string(o.Status),
		Label:           lifecycle.Label(o.Status),
		Stage:           lifecycle.Stage(o.Status),
		Terminal:        lifecycle.IsTerminal(o.Status),
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		Address:         o.Address,
		Mode:            string(o.Mode),
		PaymentMethod:   string(o.PaymentMethod),
		Total:           money(o.Total),
		Description:     o.Description,
		CreatedAt:       o.CreatedAt,
		StatusChangedAt: o.StatusChangedAt,
	}
	if o.ChangeFor.IsPositive() {
		resp.ChangeFor = money(o.ChangeFor)
	}
	for _, l := range o.Lines {
		resp.Lines = append(resp.Lines, dto.OrderLineResponse{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   money(l.UnitPrice),
		})
	}
	return resp
}

func toHistoryResponse(entries []usecase.HistoryEntry) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toOrderResponse(e.Order))
	}
	return out
}

func toRepeatResponse(r *usecase.RepeatResult) dto.RepeatResponse {
	resp := dto.RepeatResponse{OrderID: r.OrderID, Added: r.Added, Skipped: make([]dto.SkippedItemResponse, 0, len(r.Skipped))}
	for _, s := range r.Skipped {
		resp.Skipped = append(resp.Skipped, dto.SkippedItemResponse{
			ProductID:   s.ProductID,
			ProductName: s.ProductName,
			Quantity:    s.Quantity,
			Reason:      s.Reason,
		})
	}
	return resp
}

func toStatusResponse(v *realtime.StatusView) dto.StatusResponse {
	return dto.StatusResponse{
		OrderID:         v.OrderID,
		Status:          string(v.Status),
		Label:           v.Label,
		Stage:           v.Stage,
		Terminal:        v.Terminal,
		CanCancel:       v.CanCancel,
		StatusChangedAt: v.StatusChangedAt,
	}
}

func toSnapshotResponse(s *realtime.Snapshot) dto.SnapshotResponse {
	resp := dto.SnapshotResponse{
		Date:        s.Date,
		Orders:      make([]dto.DashboardOrderResponse, 0, len(s.Orders)),
		Counts:      make(map[string]int, len(s.Counts)),
		GeneratedAt: s.GeneratedAt,
	}
	for _, o := range s.Orders {
		resp.Orders = append(resp.Orders, dto.DashboardOrderResponse{
			OrderResponse: toOrderResponse(o.Order),
			Next:          string(o.Next),
			CanAdvance:    o.CanAdvance,
			TimeInStage:   int64(o.TimeInStage.Seconds()),
		})
	}
	for status, n := range s.Counts {
		resp.Counts[string(status)] = n
	}
	return resp
}
