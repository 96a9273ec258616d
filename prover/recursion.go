package prover

import (
	"errors"
	"fmt"

	"github.com/rollprover/rollprover/circuit"
	"github.com/rollprover/rollprover/config"
	"github.com/rollprover/rollprover/snark"
)

// ErrNoBatchSnarks reports a recursion request with an empty batch list.
// There is no meaningful empty aggregate; callers must pass at least one
// batch snark.
var ErrNoBatchSnarks = errors.New("recursion: no batch snarks to fold")

// RecursionTask is the linear state machine of the recursion loop: the
// batch snarks still to fold and the current round number. Each state
// transition consumes exactly one batch snark, so N batches complete in
// exactly N rounds.
type RecursionTask struct {
	pending []*snark.Snark
	round   int
}

// NewRecursionTask starts a task at round 0 over the given batch snarks.
func NewRecursionTask(batchSnarks []*snark.Snark) *RecursionTask {
	return &RecursionTask{pending: batchSnarks}
}

// Completed reports whether every batch snark has been folded.
func (t *RecursionTask) Completed() bool { return len(t.pending) == 0 }

// Round is the current round number, starting at 0.
func (t *RecursionTask) Round() int { return t.round }

// next returns the batch snark to fold this round.
func (t *RecursionTask) next() *snark.Snark { return t.pending[0] }

// stateTransition returns the successor state with the current batch
// consumed and the round advanced.
func (t *RecursionTask) stateTransition() *RecursionTask {
	return &RecursionTask{pending: t.pending[1:], round: t.round + 1}
}

// LoadOrGenRecursionSnark folds the batch snarks into one layer5 recursion
// snark, or returns the cached result.
//
// On the first run for this prover the layer5 key pair does not exist yet,
// and the circuit cannot be laid out without a verifying key. Keys are
// bootstrapped in two phases: a placeholder seed snark (no verifying key,
// designated zero instances) shapes the round-0 circuit for key
// generation, after which the circuit instance is discarded; the derived
// verifying key then produces the legitimate seed snark that starts the
// actual folding loop. No output derived from the placeholder is ever
// returned.
func (p *Prover) LoadOrGenRecursionSnark(instanceID, name string, batchSnarks []*snark.Snark, outputDir string) (*snark.Snark, error) {
	if len(batchSnarks) == 0 {
		return nil, ErrNoBatchSnarks
	}

	if outputDir != "" {
		path := CachePath(outputDir, StageRecursion, instanceID, name)
		cached, err := readCachedSnark(path)
		if err != nil {
			return nil, fmt.Errorf("recursion stage %s/%s: %w", instanceID, name, err)
		}
		if cached != nil {
			p.log.Info("snark cache hit", "layer", config.Layer5.String(), "id", instanceID, "name", name, "path", path)
			return cached, nil
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	set, err := p.paramsFor(config.Layer5)
	if err != nil {
		return nil, err
	}
	shape := p.cfg.Shape(config.Layer5)

	pk, ok := p.keys[config.Layer5]
	if !ok {
		placeholder, err := p.adapter.InitialRecursionSnark(set, shape, nil)
		if err != nil {
			return nil, fmt.Errorf("recursion stage %s/%s: placeholder seed: %w", instanceID, name, err)
		}
		keygenWitness := &circuit.RecursionWitness{
			Shape:      shape,
			PrevSnark:  placeholder,
			BatchSnark: batchSnarks[0],
			Round:      0,
		}
		pk, err = p.provingKeyFor(config.Layer5, set, keygenWitness)
		if err != nil {
			return nil, fmt.Errorf("recursion stage %s/%s: %w", instanceID, name, err)
		}
	}

	cur, err := p.adapter.InitialRecursionSnark(set, shape, pk.VK)
	if err != nil {
		return nil, fmt.Errorf("recursion stage %s/%s: seed: %w", instanceID, name, err)
	}

	for task := NewRecursionTask(batchSnarks); !task.Completed(); task = task.stateTransition() {
		w := &circuit.RecursionWitness{
			Shape:      shape,
			PrevSnark:  cur,
			BatchSnark: task.next(),
			Round:      task.Round(),
		}
		p.log.Info("folding batch snark", "id", instanceID, "name", name, "round", task.Round())
		cur, err = p.adapter.Prove(set, pk, w)
		if err != nil {
			return nil, fmt.Errorf("recursion stage %s/%s: round %d: %w", instanceID, name, task.Round(), err)
		}
	}

	if outputDir != "" {
		path := CachePath(outputDir, StageRecursion, instanceID, name)
		if err := writeCachedSnark(path, cur); err != nil {
			return nil, fmt.Errorf("recursion stage %s/%s: %w", instanceID, name, err)
		}
	}
	return cur, nil
}
