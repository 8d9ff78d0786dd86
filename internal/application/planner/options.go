package planner

import "time"

const (
	DefaultTopK            = 5
	DefaultMaxCombinations = 390625 // 5^8
	DefaultWorkers         = 8
	DefaultResultCount     = 3
	DefaultMinLayover      = 90 * time.Minute
	DefaultMaxLayover      = 8 * time.Hour
)

type Options struct {
	TopK            int
	MaxCombinations int
	Workers         int
	ResultCount     int
	MinLayover      time.Duration
	MaxLayover      time.Duration
}

func DefaultOptions() Options {
	return Options{
		TopK:            DefaultTopK,
		MaxCombinations: DefaultMaxCombinations,
		Workers:         DefaultWorkers,
		ResultCount:     DefaultResultCount,
		MinLayover:      DefaultMinLayover,
		MaxLayover:      DefaultMaxLayover,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TopK <= 0 {
		o.TopK = d.TopK
	}
	if o.MaxCombinations <= 0 {
		o.MaxCombinations = d.MaxCombinations
	}
	if o.Workers <= 0 {
		o.Workers = d.Workers
	}
	if o.ResultCount <= 0 {
		o.ResultCount = d.ResultCount
	}
	if o.MinLayover <= 0 {
		o.MinLayover = d.MinLayover
	}
	if o.MaxLayover <= 0 {
		o.MaxLayover = d.MaxLayover
	}
	return o
}
