package model

import (
	"time"
)

// PopulationVariant selects which record population a rate or pipeline count
// is computed over.
type PopulationVariant string

const (
	// VariantFull uses every record.
	VariantFull PopulationVariant = "full"
	// VariantActiveOwner restricts to records whose effective owner is on the
	// active roster. Rates under this variant skew high (survivorship bias)
	// and that skew is intentional: it estimates the capacity of the team as
	// staffed today, not historical accuracy.
	VariantActiveOwner PopulationVariant = "active_owner"
)

// StageRate is a trailing conversion rate for one adjacent stage pair.
// Rate is nil when no eligible population existed in the window; nil is
// "undefined", never zero.
type StageRate struct {
	Segment   Segment           `json:"segment"`
	FromStage string            `json:"from_stage"`
	ToStage   string            `json:"to_stage"`
	Variant   PopulationVariant `json:"variant"`
	Rate      *float64          `json:"rate"`

	// Eligible and Converted are the distinct-entity denominator and
	// numerator counts behind Rate, kept for data-quality inspection.
	Eligible  int `json:"eligible"`
	Converted int `json:"converted"`
}

// OpenPipelineCount is the in-flight population at a stage: reached the stage,
// not the next one, not terminal-lost, cohort date inside period-to-date.
type OpenPipelineCount struct {
	Segment Segment           `json:"segment"`
	Stage   string            `json:"stage"`
	Variant PopulationVariant `json:"variant"`
	Count   int               `json:"count"`
}

// ForecastTarget is one externally sourced target row. SubPeriodStart is the
// first day of the sub-period (calendar month) the target applies to.
// Duplicate (segment, stage, sub-period) rows are legal and additive.
type ForecastTarget struct {
	Channel        string    `gorm:"column:channel" json:"channel"`
	Source         string    `gorm:"column:source" json:"source"`
	Stage          string    `gorm:"column:stage" json:"stage"`
	SubPeriodStart time.Time `gorm:"column:sub_period_start" json:"sub_period_start"`
	Target         float64   `gorm:"column:target" json:"target"`
}

func (ForecastTarget) TableName() string {
	return "forecast_targets"
}

func (t *ForecastTarget) Segment() Segment {
	return Segment{Channel: t.Channel, Source: t.Source}
}

// PointForecast is one row of the period-end forecast table.
// PredictedValue = ActualValue + future conversions from the cascade; the
// entry stage has no future component, so there PredictedValue = ActualValue.
type PointForecast struct {
	Channel        string  `gorm:"column:channel" json:"channel"`
	Source         string  `gorm:"column:source" json:"source"`
	Stage          string  `gorm:"column:stage" json:"stage"`
	ForecastValue  float64 `gorm:"column:forecast_value" json:"forecast_value"`
	ActualValue    float64 `gorm:"column:actual_value" json:"actual_value"`
	PredictedValue float64 `gorm:"column:predicted_value" json:"predicted_value"`
	StddevDaily    float64 `gorm:"column:stddev_daily" json:"stddev_daily"`
}

func (PointForecast) TableName() string {
	return "point_forecasts"
}

func (p *PointForecast) Segment() Segment {
	return Segment{Channel: p.Channel, Source: p.Source}
}

// DailyProjection is one calendar-day row of the projection table.
// For dates at or before the as-of date the bounds collapse onto the actual;
// for future dates lower <= predicted <= upper and lower never drops below
// the actual-to-date.
type DailyProjection struct {
	Channel   string    `gorm:"column:channel" json:"channel"`
	Source    string    `gorm:"column:source" json:"source"`
	Stage     string    `gorm:"column:stage" json:"stage"`
	Date      time.Time `gorm:"column:date" json:"date"`
	Actual    float64   `gorm:"column:actual" json:"actual"`
	Predicted float64   `gorm:"column:predicted" json:"predicted"`
	Lower     float64   `gorm:"column:lower_bound" json:"lower"`
	Upper     float64   `gorm:"column:upper_bound" json:"upper"`
	Target    float64   `gorm:"column:target" json:"target"`
}

func (DailyProjection) TableName() string {
	return "daily_projections"
}

func (d *DailyProjection) Segment() Segment {
	return Segment{Channel: d.Channel, Source: d.Source}
}
