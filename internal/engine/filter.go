package engine

import (
	"strings"

	"github.com/iliyamo/ticket-allocation/internal/model"
)

// FilterStats counts why tickets fell out of the candidate pool, so
// a declined order can report a concrete reason.
type FilterStats struct {
	GameMismatch  int
	BlockMismatch int
	Assigned      int
}

// FilterCandidates reduces the full ticket pool to the tickets an
// order may use: matching game (flexible team matching), block inside
// the eligibility list (accepting translated spellings for external
// numbering), and still unassigned. All three must hold. Input order
// is preserved; ranking is imposed later by the classifier and the
// resolver's sort rules. No side effects.
func FilterCandidates(order model.Order, elig Eligibility, pool []*model.Ticket) ([]*model.Ticket, FilterStats) {
	allowed := make(map[string]bool, len(elig.Blocks)*2)
	for _, eb := range elig.Blocks {
		for _, b := range TranslateBlock(eb.Block, order.Source) {
			allowed[b] = true
		}
	}

	var stats FilterStats
	var out []*model.Ticket
	for _, t := range pool {
		switch {
		case !GamesMatch(order.Event, t.Game):
			stats.GameMismatch++
		case !allowed[strings.ToUpper(norm(t.Block))]:
			stats.BlockMismatch++
		case !t.Free():
			stats.Assigned++
		default:
			out = append(out, t)
		}
	}
	return out, stats
}
