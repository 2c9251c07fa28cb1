package tariff

import (
	"errors"
	"fmt"

	"frachtrechner/internal/model"
)

// 运输段级错误类型，配合 errors.Is 使用
var (
	ErrCountryNotFound     = errors.New("country not found")
	ErrZoneNotFound        = errors.New("zone not found")
	ErrWeightClassNotFound = errors.New("weight class not found")
	ErrZoneRateNotFound    = errors.New("zone rate not found")
	ErrProcessing          = errors.New("processing error")
)

// LegError 单个运输段的解析失败，不影响另一段的计算
type LegError struct {
	Leg   model.Leg
	Kind  error  // 上面的哨兵错误之一
	Zone  string // 仅 ErrZoneRateNotFound 使用
	Cause error  // 仅 ErrProcessing 使用
}

func (e *LegError) Error() string {
	switch e.Kind {
	case ErrCountryNotFound:
		return fmt.Sprintf("%s: Kein ISO-Code für Land gefunden.", e.Leg)
	case ErrZoneNotFound:
		return fmt.Sprintf("%s: Keine Zone für Land gefunden.", e.Leg)
	case ErrWeightClassNotFound:
		return fmt.Sprintf("%s: Keine Gewichtsklasse gefunden.", e.Leg)
	case ErrZoneRateNotFound:
		return fmt.Sprintf("%s: Zone %s nicht im Tarifblatt gefunden.", e.Leg, e.Zone)
	default:
		return fmt.Sprintf("%s: Fehler beim Verarbeiten – %v", e.Leg, e.Cause)
	}
}

// Unwrap 同时暴露错误类型和底层原因
func (e *LegError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func legError(leg model.Leg, kind error) *LegError {
	return &LegError{Leg: leg, Kind: kind}
}

func processingError(leg model.Leg, format string, args ...any) *LegError {
	return &LegError{Leg: leg, Kind: ErrProcessing, Cause: fmt.Errorf(format, args...)}
}
