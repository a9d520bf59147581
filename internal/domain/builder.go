package domain

// BuilderApplication is a request to join the marketplace as a PC builder.
// It is forwarded to the operator and not stored.
type BuilderApplication struct {
	BusinessName   string `json:"businessName" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Location       string `json:"location"`
	Experience     string `json:"experience"`
	Specialty      string `json:"specialty"`
	PortfolioLinks string `json:"portfolioLinks" validate:"required"`
	Instagram      string `json:"instagram,omitempty"`
}
