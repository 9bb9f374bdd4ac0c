package dto

// ProductResponse is a catalog entry with its customizations.
type ProductResponse struct {
	ID      int64            `json:"id"`
	Name    string           `json:"name"`
	Price   string           `json:"price"`
	Stock   int              `json:"stock"`
	Options []ChoiceResponse `json:"options"`
	Addons  []ChoiceResponse `json:"addons"`
}
