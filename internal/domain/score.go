package domain

import (
	m "sosie.dev/pkg/sosie/internal/model"
	pkg "sosie.dev/pkg/sosie/pkg"
)

// scoreCounter tallies verdicts. Malformed comparisons say nothing about the
// candidate and are left out of the denominator.
type scoreCounter struct {
	equivalent int
	total      int
}

func (c *scoreCounter) add(verdict m.Verdict) {
	switch verdict {
	case m.Equivalent:
		c.equivalent++
		c.total++
	case m.Divergent, m.Unsynchronizable:
		c.total++
	case m.Malformed:
	}
}

func (c scoreCounter) score() float64 {
	if c.total == 0 {
		return 1.0
	}

	return float64(c.equivalent) / float64(c.total)
}

// sosieScoreFromReports returns the share of decided comparisons whose
// candidate behaved like the reference.
func sosieScoreFromReports(reports pkg.FileSpill[m.Report]) (float64, error) {
	var counter scoreCounter

	err := reports.Range(func(_ uint64, report m.Report) error {
		counter.add(report.Verdict)
		return nil
	})
	if err != nil {
		return 0.0, err
	}

	return counter.score(), nil
}

func scoreOf(reports []m.Report) float64 {
	var counter scoreCounter
	for _, report := range reports {
		counter.add(report.Verdict)
	}

	return counter.score()
}
