package testutil

import (
	"fmt"
	"sync"
)

// ScriptedRand replays a fixed list of die results. It satisfies
// compiler.Rand and records the sides asked for, so tests can check which
// dice an expression rolled.
type ScriptedRand struct {
	mu      sync.Mutex
	results []int
	sides   []int
}

// NewScriptedRand returns dice that roll results in order.
func NewScriptedRand(results ...int) *ScriptedRand {
	return &ScriptedRand{results: results}
}

// Roll returns the next scripted result. Panics when the script is
// exhausted or the result does not fit the die.
func (r *ScriptedRand) Roll(sides int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sides) >= len(r.results) {
		panic(fmt.Sprintf("ScriptedRand: roll %d of D%d past end of script", len(r.sides)+1, sides))
	}
	v := r.results[len(r.sides)]
	if v < 1 || v > sides {
		panic(fmt.Sprintf("ScriptedRand: result %d does not fit D%d", v, sides))
	}
	r.sides = append(r.sides, sides)
	return v
}

// Sides returns the die sizes rolled so far, in order.
func (r *ScriptedRand) Sides() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.sides...)
}
