package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polkiloo/bakehouse/internal/domain/model"
)

func TestComposeDescriptionListsEveryLine(t *testing.T) {
	lines := []model.CartLine{
		{Product: model.ProductRef{ID: 1, Name: "Bolo", Price: dec("25.00")}, Quantity: 2},
		{
			Product:  model.ProductRef{ID: 1, Name: "Bolo", Price: dec("25.00")},
			Quantity: 1,
			Customization: model.Customization{
				Options: []model.Option{{ID: 11, Group: "Cobertura", Name: "Chocolate", PriceDelta: dec("3.00")}},
				Addons:  []model.Addon{{ID: 21, Name: "Vela", PriceDelta: dec("1.00")}},
				Note:    "escrever Parabéns",
			},
		},
	}
	text := composeDescription(receipt{
		lines:   lines,
		totals:  model.Totals{Subtotal: dec("79.00"), Total: dec("79.00")},
		mode:    model.DeliveryModePickup,
		payment: model.PaymentPix,
	})

	require.Equal(t, "2x Bolo @ R$ 25.00 = R$ 50.00\n"+
		"1x Bolo @ R$ 29.00 = R$ 29.00\n"+
		"   Cobertura: Chocolate; extras: Vela; note: escrever Parabéns\n"+
		"Subtotal: R$ 79.00\n"+
		"Pickup at the counter\n"+
		"Total: R$ 79.00\n"+
		"Payment: pix", text)
}

func TestSnapshotLinesKeepsCatalogIDs(t *testing.T) {
	lines := []model.CartLine{{
		Product:  model.ProductRef{ID: 4, Name: "Torta", Price: dec("40.00")},
		Quantity: 1,
		Customization: model.Customization{
			Options: []model.Option{{ID: 5, Group: "Sabor", PriceDelta: dec("2.00")}},
			Addons:  []model.Addon{{ID: 6, PriceDelta: dec("0.50")}},
		},
	}}
	snap := snapshotLines(lines)
	require.Len(t, snap, 1)
	require.Equal(t, []int64{5}, snap[0].OptionIDs)
	require.Equal(t, []int64{6}, snap[0].AddonIDs)
	require.Equal(t, "42.50", snap[0].UnitPrice.StringFixed(2))
}
