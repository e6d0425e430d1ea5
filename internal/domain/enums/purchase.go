package enums

type PurchaseCategory string

const (
	PurchaseCategoryCourse     PurchaseCategory = "course"
	PurchaseCategoryJobPackage PurchaseCategory = "job_package"
)

func ParsePurchaseCategory(raw string) (PurchaseCategory, bool) {
	switch PurchaseCategory(raw) {
	case PurchaseCategoryCourse, PurchaseCategoryJobPackage:
		return PurchaseCategory(raw), true
	default:
		return "", false
	}
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type PackageTier string

const (
	PackageTierSilver  PackageTier = "silver"
	PackageTierGold    PackageTier = "gold"
	PackageTierDiamond PackageTier = "diamond"
)

func ParsePackageTier(raw string) (PackageTier, bool) {
	switch PackageTier(raw) {
	case PackageTierSilver, PackageTierGold, PackageTierDiamond:
		return PackageTier(raw), true
	default:
		return "", false
	}
}
