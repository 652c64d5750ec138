package replay

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/papertrade/risk"
)

// Script is a list of scripted trade intents, applied when the replay clock
// reaches each step's time. It stands in for the upstream intent producer
// during a replay run.
type Script struct {
	Steps []Step `yaml:"steps"`
}

// Step is one scripted intent. Invalidation is given in the narrow
// "closes below/above N" text grammar and translated to a structured
// condition at load time; replay never re-parses text mid-run.
type Step struct {
	At           time.Time `yaml:"at"`
	Instrument   string    `yaml:"instrument"`
	Signal       string    `yaml:"signal"`
	Quantity     float64   `yaml:"quantity"`
	Leverage     int       `yaml:"leverage"`
	Confidence   float64   `yaml:"confidence"`
	RiskUSD      float64   `yaml:"risk_usd"`
	ProfitTarget float64   `yaml:"profit_target"`
	StopLoss     float64   `yaml:"stop_loss"`
	Invalidation string    `yaml:"invalidation,omitempty"`

	intent risk.Intent
}

// LoadScript parses and fully validates a script file: unknown signals or
// malformed invalidation text fail at load, before any cycle runs.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script file: %w", err)
	}

	s := &Script{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}

	for i := range s.Steps {
		step := &s.Steps[i]
		if step.Instrument == "" {
			return nil, fmt.Errorf("script step %d: instrument is required", i)
		}
		if step.At.IsZero() {
			return nil, fmt.Errorf("script step %d: at time is required", i)
		}

		intent, err := step.buildIntent()
		if err != nil {
			return nil, fmt.Errorf("script step %d (%s): %w", i, step.Instrument, err)
		}
		step.intent = intent
	}

	sort.SliceStable(s.Steps, func(i, j int) bool { return s.Steps[i].At.Before(s.Steps[j].At) })
	return s, nil
}

func (st *Step) buildIntent() (risk.Intent, error) {
	signal, err := risk.ParseSignal(st.Signal)
	if err != nil {
		return risk.Intent{}, err
	}

	intent := risk.Intent{
		Instrument: st.Instrument,
		Signal:     signal,
		Quantity:   st.Quantity,
		Leverage:   st.Leverage,
		Confidence: st.Confidence,
		RiskUSD:    st.RiskUSD,
		Plan: risk.ExitPlan{
			ProfitTarget: st.ProfitTarget,
			StopLoss:     st.StopLoss,
		},
	}

	if st.Invalidation != "" {
		cond, err := risk.ParseCondition(st.Invalidation)
		if err != nil {
			return risk.Intent{}, err
		}
		intent.Plan.Invalidation = &cond
	}

	return intent, nil
}

// Due pops every step for the instrument whose time has been reached at t.
// When several are due, the latest wins (one intent per instrument per
// cycle).
func (s *Script) Due(instrument string, t time.Time) (risk.Intent, bool) {
	var intent risk.Intent
	var found bool

	kept := s.Steps[:0]
	for _, step := range s.Steps {
		if step.Instrument == instrument && !step.At.After(t) {
			intent = step.intent
			found = true
			continue
		}
		kept = append(kept, step)
	}
	s.Steps = kept

	return intent, found
}
