package chart

// ResultFailed marks a symbol whose fetch, normalization or insert failed.
const ResultFailed = -1

// ImportResults maps every requested symbol to the rows inserted for it.
// 0 means skipped (already stored) or nothing returned; ResultFailed means
// the symbol failed.
type ImportResults map[string]int

// Merge folds other into r. A failure is sticky; counts add up.
func (r ImportResults) Merge(other ImportResults) {
	for symbol, n := range other {
		prev, seen := r[symbol]
		switch {
		case !seen:
			r[symbol] = n
		case prev == ResultFailed || n == ResultFailed:
			r[symbol] = ResultFailed
		default:
			r[symbol] = prev + n
		}
	}
}

// Failed lists symbols marked ResultFailed.
func (r ImportResults) Failed() []string {
	var out []string
	for symbol, n := range r {
		if n == ResultFailed {
			out = append(out, symbol)
		}
	}
	return out
}

// Summary aggregates ImportResults for display and fetch logs.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Empty     int `json:"empty"`
	Failed    int `json:"failed"`
	Rows      int `json:"rows"`
}

func (r ImportResults) Summary() Summary {
	s := Summary{Total: len(r)}
	for _, n := range r {
		switch {
		case n == ResultFailed:
			s.Failed++
		case n == 0:
			s.Empty++
		default:
			s.Succeeded++
			s.Rows += n
		}
	}
	return s
}
