package model

import (
	"fmt"
	"time"
)

// Ordered funnel stages. Index order is the cascade order; every
// stage-to-stage computation walks adjacent pairs of this list.
const (
	StageContacted = "contacted"
	StageMQL       = "mql"
	StageSQL       = "sql"
	StageSQO       = "sqo"
	StageJoined    = "joined"
)

var FunnelStages = []string{StageContacted, StageMQL, StageSQL, StageSQO, StageJoined}

// StageIndex returns the position of stage in the funnel order, -1 if unknown.
func StageIndex(stage string) int {
	for i, s := range FunnelStages {
		if s == stage {
			return i
		}
	}
	return -1
}

// NextStage returns the stage after the given one, "" for the last stage.
func NextStage(stage string) string {
	i := StageIndex(stage)
	if i < 0 || i == len(FunnelStages)-1 {
		return ""
	}
	return FunnelStages[i+1]
}

// SQODecision is the three-valued sqo qualification status. Pending is a real
// state, not a missing value: a pending record is excluded from rate
// denominators, it is never counted as a No.
type SQODecision string

const (
	SQODecisionYes     SQODecision = "Yes"
	SQODecisionNo      SQODecision = "No"
	SQODecisionPending SQODecision = "Pending"
)

func (d SQODecision) IsDecided() bool {
	return d == SQODecisionYes || d == SQODecisionNo
}

// Segment is the unit of aggregation for every downstream metric.
type Segment struct {
	Channel string `gorm:"column:channel" json:"channel"`
	Source  string `gorm:"column:source" json:"source"`
}

func (s Segment) String() string {
	return s.Channel + "/" + s.Source
}

// SegmentStage keys every per-stage metric map.
type SegmentStage struct {
	Segment Segment
	Stage   string
}

// FunnelRecord is one merged lead/opportunity row of the snapshot produced by
// the upstream CRM merge. Immutable per run; the whole snapshot is recomputed
// every batch cycle.
type FunnelRecord struct {
	LeadID        string `gorm:"column:lead_id" json:"lead_id"`
	OpportunityID string `gorm:"column:opportunity_id" json:"opportunity_id"`

	Channel string `gorm:"column:channel" json:"channel"`
	Source  string `gorm:"column:source" json:"source"`

	ContactedAt *time.Time `gorm:"column:contacted_at" json:"contacted_at"`
	MQLAt       *time.Time `gorm:"column:mql_at" json:"mql_at"`
	SQLAt       *time.Time `gorm:"column:sql_at" json:"sql_at"`
	SQOAt       *time.Time `gorm:"column:sqo_at" json:"sqo_at"`
	JoinedAt    *time.Time `gorm:"column:joined_at" json:"joined_at"`

	SQODecision SQODecision `gorm:"column:sqo_decision" json:"sqo_decision"`

	// LeadOwnerID owns the record through the lead stages, OpportunityOwnerID
	// from sqo onward. Which one is "effective" depends on the stage being
	// evaluated, see EffectiveOwnerID.
	LeadOwnerID        string `gorm:"column:lead_owner_id" json:"lead_owner_id"`
	OpportunityOwnerID string `gorm:"column:opportunity_owner_id" json:"opportunity_owner_id"`

	TerminalLost bool `gorm:"column:terminal_lost" json:"terminal_lost"`

	// FilterDate is the canonical cohort date for period-to-date windows.
	FilterDate time.Time `gorm:"column:filter_date" json:"filter_date"`
}

func (FunnelRecord) TableName() string {
	return "funnel_records"
}

func (r *FunnelRecord) Segment() Segment {
	return Segment{Channel: r.Channel, Source: r.Source}
}

// Validate rejects records the pipeline cannot attribute to any entity.
// The returned error is the per-record skip reason.
func (r *FunnelRecord) Validate() error {
	if r.LeadID == "" && r.OpportunityID == "" {
		return fmt.Errorf("record has neither lead id nor opportunity id")
	}
	switch r.SQODecision {
	case "", SQODecisionYes, SQODecisionNo, SQODecisionPending:
	default:
		return fmt.Errorf("unknown sqo decision %q", r.SQODecision)
	}
	return nil
}

// StageTimestamp returns the reach timestamp for the given stage, nil when
// the record never reached it.
func (r *FunnelRecord) StageTimestamp(stage string) *time.Time {
	switch stage {
	case StageContacted:
		return r.ContactedAt
	case StageMQL:
		return r.MQLAt
	case StageSQL:
		return r.SQLAt
	case StageSQO:
		return r.SQOAt
	case StageJoined:
		return r.JoinedAt
	}
	return nil
}

func (r *FunnelRecord) Reached(stage string) bool {
	return r.StageTimestamp(stage) != nil
}

// CountingID returns the identity by which a record is counted at the given
// stage. Before sqo the entity is the lead; at sqo and after it is the
// opportunity, since a lead that never produced an opportunity cannot reach
// sqo. Falls back to the opportunity id for lead stages when the record has
// no lead identity.
func (r *FunnelRecord) CountingID(stage string) string {
	if StageIndex(stage) >= StageIndex(StageSQO) {
		return r.OpportunityID
	}
	if r.LeadID != "" {
		return r.LeadID
	}
	return r.OpportunityID
}

// EffectiveOwnerID returns the role-specific owner for the given stage.
func (r *FunnelRecord) EffectiveOwnerID(stage string) string {
	if StageIndex(stage) >= StageIndex(StageSQO) {
		return r.OpportunityOwnerID
	}
	return r.LeadOwnerID
}
