package suite

import "time"

type Outcome int

const (
	Passed Outcome = iota
	Failed
	Errored
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Errored:
		return "error"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

type CaseResult struct {
	Group        string
	Name         string
	Outcome      Outcome
	Expectations []Expectation
	Err          error
	SkipReason   string
	Duration     time.Duration
}

// FullName возвращает имя в стиле "группа проверка".
func (r CaseResult) FullName() string {
	return r.Group + " " + r.Name
}

type GroupResult struct {
	Name  string
	Cases []CaseResult
}

type Report struct {
	ID       string
	Started  time.Time
	Duration time.Duration
	Groups   []GroupResult
}

type Summary struct {
	Passed  int
	Failed  int
	Errored int
	Skipped int
}

func (s Summary) Total() int {
	return s.Passed + s.Failed + s.Errored + s.Skipped
}

func (r *Report) Summary() Summary {
	var s Summary
	for _, g := range r.Groups {
		for _, c := range g.Cases {
			switch c.Outcome {
			case Passed:
				s.Passed++
			case Failed:
				s.Failed++
			case Errored:
				s.Errored++
			case Skipped:
				s.Skipped++
			}
		}
	}
	return s
}

// OK сообщает, что нет ни проваленных, ни оборванных проверок.
func (r *Report) OK() bool {
	s := r.Summary()
	return s.Failed == 0 && s.Errored == 0
}
