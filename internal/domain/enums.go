package domain

import "fmt"

// Impact ranks how much a suggestion is worth acting on.
type Impact string

const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
	ImpactLow    Impact = "Low"
)

// ParseImpact accepts only the three canonical spellings.
func ParseImpact(s string) (Impact, error) {
	switch Impact(s) {
	case ImpactHigh, ImpactMedium, ImpactLow:
		return Impact(s), nil
	default:
		return "", fmt.Errorf("invalid impact %q", s)
	}
}

// PayloadKind identifies the active variant of a Payload.
type PayloadKind string

const (
	PayloadText   PayloadKind = "text"
	PayloadBinary PayloadKind = "binary"
)

// LifecycleStatus is the observable state of the analysis request.
type LifecycleStatus string

const (
	StatusIdle    LifecycleStatus = "idle"
	StatusLoading LifecycleStatus = "loading"
	StatusSuccess LifecycleStatus = "success"
	StatusFailed  LifecycleStatus = "failed"
)

// DistributionPolicy decides what happens when category percentages
// do not sum to 100 within tolerance.
type DistributionPolicy string

const (
	DistributionReject  DistributionPolicy = "reject"
	DistributionRescale DistributionPolicy = "rescale"
)

// AllowedExtensions maps accepted upload extensions (without dot) to the
// media type declared for them.
var AllowedExtensions = map[string]string{
	"csv":  "text/csv",
	"tsv":  "text/tab-separated-values",
	"txt":  "text/plain",
	"pdf":  "application/pdf",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"webp": "image/webp",
	"xlsx": MediaTypeXLSX,
}

// MediaTypeXLSX is the Office Open XML workbook media type.
const MediaTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
