// Package draft validates externally proposed schedules before they are
// allowed anywhere near the engines.
//
// A draft is untrusted JSON. Parse probes it field by field with gjson,
// collects every problem instead of stopping at the first one and drops
// values the engines compute themselves (early/late dates, float,
// criticality, planned dates). Accept then runs the cycle check and a full
// CPM recompute, so nothing in an accepted draft is taken on faith.
package draft

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/joshharrison/siteloom/internal/cpm"
	"github.com/joshharrison/siteloom/internal/logger"
	"github.com/joshharrison/siteloom/internal/schedule"
)

// Key aliases accepted for each field. The Portuguese names are what the
// planning service has historically returned.
var (
	listKeys        = []string{"activities", "schedule", "cronograma"}
	idKeys          = []string{"id"}
	nameKeys        = []string{"name", "discriminacao", "descricao"}
	durationKeys    = []string{"durationDays", "duration_days", "duracao"}
	predecessorKeys = []string{"predecessorIds", "predecessor_ids", "predecessores"}
	successorKeys   = []string{"successorIds", "successor_ids", "sucessores"}
	relationKeys    = []string{"relationType", "relation_type", "tipoRelacao"}
	lagKeys         = []string{"lagDays", "lag_days", "lag"}
	parentKeys      = []string{"parentId", "parent_id", "pai"}
	responsibleKeys = []string{"responsible", "responsavel"}
)

// computedKeys are engine outputs that a draft may carry but that are never
// trusted.
var computedKeys = []string{
	"earlyStart", "earlyFinish", "lateStart", "lateFinish", "float", "isCritical",
	"early_start", "early_finish", "late_start", "late_finish", "is_critical",
	"folga_total", "folga_livre", "eh_critica",
	"plannedStartDate", "plannedEndDate", "dataInicio", "dataFim",
}

// FieldError is one problem found in a draft.
type FieldError struct {
	Index      int
	ActivityID string
	Field      string
	Reason     string
}

func (e FieldError) String() string {
	if e.ActivityID != "" {
		return fmt.Sprintf("activity %s (#%d): %s %s", e.ActivityID, e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("activity #%d: %s %s", e.Index, e.Field, e.Reason)
}

// DraftError lists every problem that made a draft unusable.
type DraftError struct {
	Problems []FieldError
}

func (e *DraftError) Error() string {
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = p.String()
	}
	return fmt.Sprintf("draft rejected (%d problems):\n  %s", len(e.Problems), strings.Join(lines, "\n  "))
}

// Draft is a parsed, schema-valid proposal.
type Draft struct {
	Activities []schedule.Activity
	// Ignored names the computed fields that were present and dropped,
	// as "<id>.<field>".
	Ignored []string
	// Notes carries free text alerts the proposer attached, if any.
	Notes []string
}

// Parse validates raw draft JSON. The top level is either an object with an
// activities list or a bare array of activities.
func Parse(data []byte) (*Draft, error) {
	raw := string(data)
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("draft is not valid JSON")
	}

	root := gjson.Parse(raw)
	list := root
	if root.IsObject() {
		list = first(root, listKeys...)
		if !list.Exists() {
			return nil, &DraftError{Problems: []FieldError{{Index: -1, Field: "activities", Reason: "is missing"}}}
		}
	}
	if !list.IsArray() {
		return nil, &DraftError{Problems: []FieldError{{Index: -1, Field: "activities", Reason: "must be an array"}}}
	}

	d := &Draft{}
	var problems []FieldError
	seen := make(map[string]bool)

	for i, item := range list.Array() {
		p := parser{index: i}
		a, ignored := p.activity(item)
		if a.ID != "" {
			if seen[a.ID] {
				p.fail(a.ID, "id", "is duplicated")
			}
			seen[a.ID] = true
		}
		problems = append(problems, p.problems...)
		if len(p.problems) == 0 {
			d.Activities = append(d.Activities, a)
			d.Ignored = append(d.Ignored, ignored...)
		}
	}

	if len(problems) > 0 {
		return nil, &DraftError{Problems: problems}
	}

	for _, n := range first(root, "alerts", "alertas", "notes").Array() {
		d.Notes = append(d.Notes, n.String())
	}
	if len(d.Ignored) > 0 {
		logger.Debug("draft: ignored %d computed fields", len(d.Ignored))
	}
	return d, nil
}

// Accept checks a parsed draft for parent and dependency cycles and
// recomputes it from scratch, scheduling phase rows as aggregates of their
// children. The returned result is the only trusted view of the draft.
func Accept(d *Draft) (*cpm.Result, error) {
	// AnalyzeTree runs both cycle checks before any pass.
	result, err := cpm.AnalyzeTree(d.Activities)
	if err != nil {
		return nil, fmt.Errorf("draft rejected: %w", err)
	}
	return result, nil
}

type parser struct {
	index    int
	problems []FieldError
}

func (p *parser) fail(id, field, reason string) {
	p.problems = append(p.problems, FieldError{Index: p.index, ActivityID: id, Field: field, Reason: reason})
}

func (p *parser) activity(item gjson.Result) (schedule.Activity, []string) {
	var a schedule.Activity
	if !item.IsObject() {
		p.fail("", "activity", "must be an object")
		return a, nil
	}

	idVal := first(item, idKeys...)
	id, ok := parseID(idVal)
	switch {
	case !idVal.Exists():
		p.fail("", "id", "is missing")
	case !ok:
		p.fail("", "id", fmt.Sprintf("must be a non-empty string or positive integer, got %s", idVal.Raw))
	}
	a.ID = id

	dur := first(item, durationKeys...)
	switch n, ok := wholeNumber(dur); {
	case !dur.Exists():
		p.fail(id, "durationDays", "is missing")
	case !ok || n < 0:
		p.fail(id, "durationDays", fmt.Sprintf("must be a non-negative integer, got %s", dur.Raw))
	default:
		a.DurationDays = n
	}

	preds := first(item, predecessorKeys...)
	if !preds.Exists() {
		p.fail(id, "predecessorIds", "is missing")
	} else {
		a.PredecessorIDs = p.idList(id, "predecessorIds", preds)
	}
	if succs := first(item, successorKeys...); succs.Exists() {
		a.SuccessorIDs = p.idList(id, "successorIds", succs)
	}

	if rel := first(item, relationKeys...); rel.Exists() {
		rt, err := schedule.ParseRelationType(rel.String())
		if rel.Type != gjson.String || err != nil {
			p.fail(id, "relationType", fmt.Sprintf("must be one of FS, SS, FF, SF, got %s", rel.Raw))
		}
		a.RelationType = rt
	}
	if lag := first(item, lagKeys...); lag.Exists() {
		n, ok := wholeNumber(lag)
		if !ok {
			p.fail(id, "lagDays", fmt.Sprintf("must be an integer, got %s", lag.Raw))
		}
		a.LagDays = n
	}
	if parent := first(item, parentKeys...); parent.Exists() && parent.Type != gjson.Null {
		pid, ok := parseID(parent)
		if !ok {
			p.fail(id, "parentId", fmt.Sprintf("must be an id, got %s", parent.Raw))
		}
		a.ParentID = pid
	}

	a.Name = first(item, nameKeys...).String()
	a.Responsible = first(item, responsibleKeys...).String()

	var ignored []string
	for _, k := range computedKeys {
		if item.Get(k).Exists() {
			ignored = append(ignored, id+"."+k)
		}
	}
	return a, ignored
}

func (p *parser) idList(id, field string, v gjson.Result) []string {
	if !v.IsArray() {
		p.fail(id, field, fmt.Sprintf("must be an array, got %s", v.Raw))
		return nil
	}
	var out []string
	for _, e := range v.Array() {
		ref, ok := parseID(e)
		if !ok {
			p.fail(id, field, fmt.Sprintf("contains invalid id %s", e.Raw))
			continue
		}
		out = append(out, ref)
	}
	return out
}

// first returns the first present key of obj.
func first(obj gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := obj.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

// parseID accepts a non-empty string or a positive integer.
func parseID(v gjson.Result) (string, bool) {
	switch v.Type {
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		return s, s != ""
	case gjson.Number:
		n, ok := wholeNumber(v)
		if !ok || n <= 0 {
			return "", false
		}
		return strconv.Itoa(n), true
	}
	return "", false
}

func wholeNumber(v gjson.Result) (int, bool) {
	if v.Type != gjson.Number || v.Num != math.Trunc(v.Num) || math.Abs(v.Num) > math.MaxInt32 {
		return 0, false
	}
	return int(v.Num), true
}
