// Package folio numbers labels within an (organization, delivery date) scope.
package folio

// Allocator hands out folios for tracking codes. Folios already stored for a
// code are reused; new codes get the next number after the highest folio seen.
// An Allocator is used by a single run and is not safe for concurrent use.
type Allocator struct {
	byCode  map[string]int
	counter int
}

func NewAllocator() *Allocator {
	return &Allocator{byCode: map[string]int{}}
}

// Seed loads the folios already assigned in the scope. lastMax is the highest
// stored folio; the counter never starts below any seeded folio.
func (a *Allocator) Seed(existing map[string]int, lastMax int) {
	a.byCode = make(map[string]int, len(existing))
	a.counter = lastMax
	for code, f := range existing {
		if code == "" {
			continue
		}
		a.byCode[code] = f
		if f > a.counter {
			a.counter = f
		}
	}
}

// GetOrAllocate returns the folio for code, allocating counter+1 the first
// time a code is seen. An empty code always gets a fresh folio.
func (a *Allocator) GetOrAllocate(code string) int {
	if code != "" {
		if f, ok := a.byCode[code]; ok {
			return f
		}
	}
	a.counter++
	if code != "" {
		a.byCode[code] = a.counter
	}
	return a.counter
}

// Last is the highest folio handed out or seeded.
func (a *Allocator) Last() int {
	return a.counter
}
