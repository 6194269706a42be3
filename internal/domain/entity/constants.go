package entity

// Brand constants - the fixed set of brands expenses are booked against
const (
	BrandTejas     = "Tejas"
	BrandAranya    = "Aranya"
	BrandMithila   = "Mithila"
	BrandCorporate = "Corporate"
)

// Brands lists all valid brands in display order
var Brands = []string{
	BrandTejas,
	BrandAranya,
	BrandMithila,
	BrandCorporate,
}

// Category constants for expense classification
const (
	CategoryMarketing   = "Marketing"
	CategoryTravel      = "Travel"
	CategoryOffice      = "Office Supplies"
	CategoryUtilities   = "Utilities"
	CategoryRent        = "Rent"
	CategorySalaries    = "Salaries"
	CategoryMaintenance = "Maintenance"
	CategoryOther       = "Other"
)

// Categories maps each category to its allowed subcategories.
// An empty slice means the category takes no subcategory.
var Categories = map[string][]string{
	CategoryMarketing:   {"Digital", "Print", "Events", "Influencer"},
	CategoryTravel:      {"Flights", "Hotels", "Local Transport"},
	CategoryOffice:      {},
	CategoryUtilities:   {"Electricity", "Internet", "Phone"},
	CategoryRent:        {},
	CategorySalaries:    {},
	CategoryMaintenance: {},
	CategoryOther:       {},
}

// CategoryNames lists all valid categories in display order
var CategoryNames = []string{
	CategoryMarketing,
	CategoryTravel,
	CategoryOffice,
	CategoryUtilities,
	CategoryRent,
	CategorySalaries,
	CategoryMaintenance,
	CategoryOther,
}

// Payment mode constants for stage 3 payouts
const (
	PaymentModeUPI    = "UPI"
	PaymentModeNEFT   = "NEFT"
	PaymentModeRTGS   = "RTGS"
	PaymentModeCheque = "Cheque"
	PaymentModeCash   = "Cash"
	PaymentModeCard   = "Card"
)

// PaymentModes lists all valid payment modes
var PaymentModes = []string{
	PaymentModeUPI,
	PaymentModeNEFT,
	PaymentModeRTGS,
	PaymentModeCheque,
	PaymentModeCash,
	PaymentModeCard,
}

// IsValidBrand returns true if the brand is in the fixed brand set
func IsValidBrand(brand string) bool {
	for _, b := range Brands {
		if b == brand {
			return true
		}
	}
	return false
}

// IsValidCategory returns true if the category is in the fixed category set
func IsValidCategory(category string) bool {
	_, ok := Categories[category]
	return ok
}

// IsValidSubcategory returns true if the subcategory is allowed for the
// category. An empty subcategory is always allowed.
func IsValidSubcategory(category, subcategory string) bool {
	if subcategory == "" {
		return true
	}
	subs, ok := Categories[category]
	if !ok {
		return false
	}
	for _, s := range subs {
		if s == subcategory {
			return true
		}
	}
	return false
}

// IsValidPaymentMode returns true if the payment mode is in the fixed set
func IsValidPaymentMode(mode string) bool {
	for _, m := range PaymentModes {
		if m == mode {
			return true
		}
	}
	return false
}
