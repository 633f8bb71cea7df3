package conditionals

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"golang.org/x/text/cases"
)

var (
	// ErrUnknownAttribute is returned when a condition names an attribute the
	// world state does not have.
	ErrUnknownAttribute = errors.New("unknown attribute")
	// ErrUnknownConditionType is returned for a Type the evaluator does not know.
	ErrUnknownConditionType = errors.New("unknown condition type")
	// ErrNoRandomSource is returned when a random condition is evaluated without Env.Rand.
	ErrNoRandomSource = errors.New("random condition evaluated without a random source")
)

// GameStateView provides the minimal interface needed to evaluate conditions.
// This avoids import cycles with the state package.
type GameStateView interface {
	GetLocation() string
	GetTime() time.Time
	GetAttribute(name string) (int, bool)
	GetItem(name string) (value any, count int, ok bool)
}

// Env carries the collaborators a condition may consult besides world state.
type Env struct {
	Rand *rand.Rand // source for random conditions; tests seed it
}

var dayFolder = cases.Fold()

// Evaluate reports whether c holds. It never mutates the view; only random
// conditions draw from env.Rand.
func Evaluate(c Condition, view GameStateView, env Env) (bool, error) {
	switch c.Type {
	case "", TypeTrue:
		return true, nil

	case TypeFalse:
		return false, nil

	case TypeTime:
		return evaluateTime(c, view.GetTime()), nil

	case TypeLocation:
		return slices.Contains(c.Locations, view.GetLocation()), nil

	case TypePlayerAttribute:
		for name, bounds := range c.Attributes {
			value, ok := view.GetAttribute(name)
			if !ok {
				return false, fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
			}
			if !bounds.Contains(value) {
				return false, nil
			}
		}
		return true, nil

	case TypePlayerItem:
		for name, check := range c.Items {
			value, count, found := view.GetItem(name)
			if !itemMatches(check, value, count, found) {
				return false, nil
			}
		}
		return true, nil

	case TypeRandom:
		if env.Rand == nil {
			return false, ErrNoRandomSource
		}
		return env.Rand.Float64() < c.Probability, nil

	case TypeAnd:
		for _, sub := range c.Conditions {
			ok, err := Evaluate(sub, view, env)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	case TypeOr:
		for _, sub := range c.Conditions {
			ok, err := Evaluate(sub, view, env)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case TypeXor:
		odd := false
		for _, sub := range c.Conditions {
			ok, err := Evaluate(sub, view, env)
			if err != nil {
				return false, err
			}
			if ok {
				odd = !odd
			}
		}
		return odd, nil
	}

	return false, fmt.Errorf("%w: %q", ErrUnknownConditionType, c.Type)
}

// EvaluateOptional treats a nil condition as true.
func EvaluateOptional(c *Condition, view GameStateView, env Env) (bool, error) {
	if c == nil {
		return true, nil
	}
	return Evaluate(*c, view, env)
}

func evaluateTime(c Condition, now time.Time) bool {
	today := dayFolder.String(now.Weekday().String())
	dayMatch := slices.ContainsFunc(c.Days, func(day string) bool {
		return dayFolder.String(day) == today
	})
	if !dayMatch {
		return false
	}

	current := ClockTime(now.Hour()*60 + now.Minute())
	if current < c.Start || current > c.End {
		return false
	}

	// Exact time points are optional
	if len(c.Times) > 0 {
		return slices.Contains(c.Times, current)
	}
	return true
}

func itemMatches(check ItemCheck, value any, count int, found bool) bool {
	if check.Exists != nil && *check.Exists != found {
		return false
	}
	if !found {
		// Nothing further can be checked against a missing item
		return check.Tag == ""
	}
	if !check.Count.Contains(count) {
		return false
	}
	if check.Tag != "" {
		record, ok := value.(map[string]any)
		if !ok {
			return false
		}
		if _, ok := record[check.Tag]; !ok {
			return false
		}
	}
	return true
}
