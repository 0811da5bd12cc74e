package engine

import (
	"sort"
	"strings"

	"github.com/iliyamo/ticket-allocation/internal/model"
)

// rowKey identifies one physical row of one game's inventory.
type rowKey struct {
	game  string
	block string
	row   int
}

// seatKey identifies one physical seat, for diagonal lookups.
type seatKey struct {
	game  string
	block string
	row   int
	seat  int
}

// specialDiagonal lists venue quirks where the seat directly above or
// below carries a different number than the standard ±2/0 offsets.
// Block 618: row 7 seat 24 sits directly above row 6 seat 28.
var specialDiagonal = map[seatPos]seatPos{
	{"618", 7, 24}: {"618", 6, 28},
	{"618", 6, 28}: {"618", 7, 24},
}

type seatPos struct {
	block string
	row   int
	seat  int
}

// Classify partitions a candidate ticket pool into adjacency groups.
// The algorithm:
//
//  1. group tickets by (game, block, row);
//  2. split each row by seat parity — physically adjacent seats share
//     parity in this venue's numbering;
//  3. scan each parity class for maximal runs at step 2: length 1 is
//     a SINGLE candidate, 2 a PAIR, n>=3 an N_TOGETHER run;
//  4. pair up leftover singles in the same parity class separated by
//     exactly 4 (one empty seat between them) into SCH groups, left
//     to right, each seat at most once;
//  5. pair remaining singles diagonally: same block, adjacent row,
//     seat offset 0 or ±2 (plus known venue quirks) become SCH_N
//     groups spanning two rows.
//
// Whatever is still alone becomes a SINGLE group. The result is a
// partition: every ticket belongs to exactly one group. Pure function
// of its input, deterministic given seat numbering.
func Classify(pool []*model.Ticket) []*model.SeatGroup {
	rows := make(map[rowKey][]*model.Ticket)
	seats := make(map[seatKey]*model.Ticket, len(pool))
	for _, t := range pool {
		k := rowKey{game: norm(t.Game), block: strings.ToUpper(norm(t.Block)), row: t.Row}
		rows[k] = append(rows[k], t)
		seats[seatKey{k.game, k.block, k.row, t.Seat}] = t
	}

	keys := make([]rowKey, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].game != keys[j].game {
			return keys[i].game < keys[j].game
		}
		if keys[i].block != keys[j].block {
			return keys[i].block < keys[j].block
		}
		return keys[i].row < keys[j].row
	})

	var groups []*model.SeatGroup
	var loners []*model.Ticket // singles awaiting diagonal pairing
	for _, k := range keys {
		for _, class := range parityClasses(rows[k]) {
			runs, singles := scanRuns(class)
			for _, run := range runs {
				groups = append(groups, newRowGroup(k, run, 0))
			}
			paired, rest := pairSCH(singles)
			for _, p := range paired {
				groups = append(groups, newRowGroup(k, p, 1))
			}
			loners = append(loners, rest...)
		}
	}

	groups = append(groups, pairDiagonal(loners, seats)...)
	return groups
}

// parityClasses splits a row's tickets into even and odd seat
// numbers, each sorted by seat.
func parityClasses(row []*model.Ticket) [2][]*model.Ticket {
	var out [2][]*model.Ticket
	for _, t := range row {
		i := t.Seat & 1
		out[i] = append(out[i], t)
	}
	for i := range out {
		sort.Slice(out[i], func(a, b int) bool { return out[i][a].Seat < out[i][b].Seat })
	}
	return out
}

// scanRuns finds maximal runs where consecutive seats differ by
// exactly 2. Runs of length >= 2 are returned as runs; lone seats are
// returned separately for SCH pairing.
func scanRuns(class []*model.Ticket) (runs [][]*model.Ticket, singles []*model.Ticket) {
	var cur []*model.Ticket
	flush := func() {
		switch {
		case len(cur) == 1:
			singles = append(singles, cur[0])
		case len(cur) >= 2:
			runs = append(runs, cur)
		}
		cur = nil
	}
	for _, t := range class {
		if len(cur) > 0 && t.Seat-cur[len(cur)-1].Seat != 2 {
			flush()
		}
		cur = append(cur, t)
	}
	flush()
	return runs, singles
}

// pairSCH joins leftover singles separated by exactly 4 into SCH
// pairs, greedily left to right. Each single joins at most one pair;
// chaining two gaps is never a valid group.
func pairSCH(singles []*model.Ticket) (pairs [][]*model.Ticket, rest []*model.Ticket) {
	for i := 0; i < len(singles); i++ {
		if i+1 < len(singles) && singles[i+1].Seat-singles[i].Seat == 4 {
			pairs = append(pairs, []*model.Ticket{singles[i], singles[i+1]})
			i++
			continue
		}
		rest = append(rest, singles[i])
	}
	return pairs, rest
}

// pairDiagonal joins remaining singles across adjacent rows. Tickets
// that find no partner become SINGLE groups.
func pairDiagonal(loners []*model.Ticket, seats map[seatKey]*model.Ticket) []*model.SeatGroup {
	taken := make(map[*model.Ticket]bool, len(loners))
	lonerSet := make(map[*model.Ticket]bool, len(loners))
	for _, t := range loners {
		lonerSet[t] = true
	}

	var groups []*model.SeatGroup
	emit := func(a, b *model.Ticket) {
		taken[a], taken[b] = true, true
		if b.Row < a.Row || (b.Row == a.Row && b.Seat < a.Seat) {
			a, b = b, a
		}
		groups = append(groups, &model.SeatGroup{
			Kind:    model.GroupSCHDiagonal,
			Game:    norm(a.Game),
			Block:   strings.ToUpper(norm(a.Block)),
			Row:     a.Row,
			Tickets: []*model.Ticket{a, b},
			Gaps:    1,
		})
	}
	partner := func(t *model.Ticket) *model.Ticket {
		game := norm(t.Game)
		block := strings.ToUpper(norm(t.Block))
		if dst, ok := specialDiagonal[seatPos{block, t.Row, t.Seat}]; ok {
			if p := seats[seatKey{game, block, dst.row, dst.seat}]; p != nil && lonerSet[p] && !taken[p] {
				return p
			}
		}
		for _, dr := range []int{-1, 1} {
			for _, ds := range []int{-2, 0, 2} {
				if p := seats[seatKey{game, block, t.Row + dr, t.Seat + ds}]; p != nil && lonerSet[p] && !taken[p] && p != t {
					return p
				}
			}
		}
		return nil
	}

	for _, t := range loners {
		if taken[t] {
			continue
		}
		if p := partner(t); p != nil {
			emit(t, p)
			continue
		}
		taken[t] = true
		groups = append(groups, &model.SeatGroup{
			Kind:    model.GroupSingle,
			Game:    norm(t.Game),
			Block:   strings.ToUpper(norm(t.Block)),
			Row:     t.Row,
			Tickets: []*model.Ticket{t},
		})
	}
	return groups
}

// newRowGroup builds a same-row group from ordered members. gaps is
// the number of step-4 gaps inside the member sequence (0 or 1).
func newRowGroup(k rowKey, members []*model.Ticket, gaps int) *model.SeatGroup {
	kind := model.GroupSingle
	switch {
	case gaps == 1:
		kind = model.GroupSCH
	case len(members) == 2:
		kind = model.GroupPair
	case len(members) >= 3:
		kind = model.GroupRun
	}
	return &model.SeatGroup{
		Kind:    kind,
		Game:    k.game,
		Block:   k.block,
		Row:     k.row,
		Tickets: members,
		Gaps:    gaps,
	}
}
