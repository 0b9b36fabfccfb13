// ABOUTME: Team-to-term timetabling problem over schedule genotypes
// ABOUTME: Penalises student clashes, assistant double-booking and room overflow

package problem

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"popsearch/solution"
)

// TimeSlot is a same-day interval in minutes since midnight
type TimeSlot struct {
	Date  string
	Start int
	End   int
}

// ParseTimeSlot validates a YYYY-MM-DD date and HH:MM start/end times
func ParseTimeSlot(date, start, end string) (TimeSlot, error) {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return TimeSlot{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidProblem, date)
	}
	s, err := parseClock(start)
	if err != nil {
		return TimeSlot{}, err
	}
	e, err := parseClock(end)
	if err != nil {
		return TimeSlot{}, err
	}
	if s > e {
		return TimeSlot{}, fmt.Errorf("%w: start %s is later than end %s", ErrInvalidProblem, start, end)
	}
	return TimeSlot{Date: date, Start: s, End: e}, nil
}

func parseClock(hhmm string) (int, error) {
	h, m, ok := strings.Cut(hhmm, ":")
	hours, herr := strconv.Atoi(h)
	minutes, merr := strconv.Atoi(m)
	if !ok || herr != nil || merr != nil || hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: time %q must be HH:MM", ErrInvalidProblem, hhmm)
	}
	return hours*60 + minutes, nil
}

// Overlap returns the number of minutes both slots share
func (t TimeSlot) Overlap(o TimeSlot) int {
	if t.Date != o.Date {
		return 0
	}
	return max(0, min(t.End, o.End)-max(t.Start, o.Start))
}

func (t TimeSlot) String() string {
	return fmt.Sprintf("%s %02d:%02d-%02d:%02d", t.Date, t.Start/60, t.Start%60, t.End/60, t.End%60)
}

// Room is a location with a seat capacity
type Room struct {
	ID       string
	Capacity int
}

// Term is a room booked at a time slot
type Term struct {
	Slot TimeSlot
	Room Room
}

// Student is identified by ID and lists the slots they are unavailable
type Student struct {
	ID   string
	Busy []TimeSlot
}

// Team is a group of students supervised by one assistant
type Team struct {
	ID        string
	Assistant string
	Members   []*Student
}

// Timetable assigns every team one of the available terms
type Timetable struct {
	teams []Team
	terms []Term
	index map[string]int
}

// NewTimetable validates and builds a timetabling instance
func NewTimetable(teams []Team, terms []Term) (*Timetable, error) {
	if len(teams) == 0 || len(terms) == 0 {
		return nil, fmt.Errorf("%w: timetable needs teams and terms (got %d, %d)", ErrInvalidProblem, len(teams), len(terms))
	}
	index := make(map[string]int, len(teams))
	for i, team := range teams {
		if _, dup := index[team.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate team %q", ErrInvalidProblem, team.ID)
		}
		index[team.ID] = i
	}
	return &Timetable{
		teams: append([]Team(nil), teams...),
		terms: append([]Term(nil), terms...),
		index: index,
	}, nil
}

// Teams returns the team list. Read-only.
func (tt *Timetable) Teams() []Team {
	return tt.teams
}

// Terms returns the term list. Read-only.
func (tt *Timetable) Terms() []Term {
	return tt.terms
}

// NumTerms returns the number of bookable terms
func (tt *Timetable) NumTerms() int {
	return len(tt.terms)
}

// RandomTerm draws a uniform term index
func (tt *Timetable) RandomTerm() int {
	return rand.IntN(len(tt.terms))
}

// Evaluate implements Adapter. The overlap sum of member clashes is scaled
// by a multiplier that grows with every assistant clash and room overflow.
func (tt *Timetable) Evaluate(s *solution.Schedule) *solution.Schedule {
	sum, multiplier := 0, 1
	occupancy := make(map[int]int, len(tt.terms))
	obligations := make(map[string][]TimeSlot)

	for _, team := range tt.teams {
		termIdx, ok := s.Assignment[team.ID]
		if !ok {
			continue
		}
		term := tt.terms[termIdx]

		for _, booked := range obligations[team.Assistant] {
			if booked.Overlap(term.Slot) > 0 {
				multiplier++
			}
		}
		obligations[team.Assistant] = append(obligations[team.Assistant], term.Slot)

		occupancy[termIdx] += len(team.Members)
		if occupancy[termIdx] > term.Room.Capacity {
			multiplier++
		}

		for _, student := range team.Members {
			for _, busy := range student.Busy {
				sum += busy.Overlap(term.Slot)
			}
		}
	}

	s.OverlapMinutes = sum
	s.SetFitness(float64(-sum * multiplier))
	return s
}

// GenerateRandom implements Adapter
func (tt *Timetable) GenerateRandom() *solution.Schedule {
	assignment := make(map[string]int, len(tt.teams))
	for _, team := range tt.teams {
		assignment[team.ID] = tt.RandomTerm()
	}
	s := &solution.Schedule{Assignment: assignment}
	return tt.Evaluate(s)
}

// Describe renders a schedule as one line per team
func (tt *Timetable) Describe(s *solution.Schedule) string {
	var sb strings.Builder
	for _, team := range tt.teams {
		idx, ok := s.Assignment[team.ID]
		if !ok {
			continue
		}
		term := tt.terms[idx]
		fmt.Fprintf(&sb, "%-8s %-10s %s %s\n", team.ID, team.Assistant, term.Slot, term.Room.ID)
	}
	return sb.String()
}

// RandomTimetable builds a synthetic instance: numTeams teams of
// teamSize students, numTerms two-hour terms over one week and a few
// random busy slots per student.
func RandomTimetable(numTeams, teamSize, numTerms, numAssistants int) (*Timetable, error) {
	if numTeams < 1 || teamSize < 1 || numTerms < 1 || numAssistants < 1 {
		return nil, fmt.Errorf("%w: random timetable sizes must be positive", ErrInvalidProblem)
	}

	day := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	randomSlot := func(length int) TimeSlot {
		date := day.AddDate(0, 0, rand.IntN(5)).Format(time.DateOnly)
		start := 8*60 + 30*rand.IntN(20)
		return TimeSlot{Date: date, Start: start, End: start + length}
	}

	rooms := []Room{{ID: "A101", Capacity: teamSize * 2}, {ID: "B201", Capacity: teamSize}, {ID: "C301", Capacity: teamSize * 3}}
	terms := make([]Term, numTerms)
	for i := range terms {
		terms[i] = Term{Slot: randomSlot(120), Room: rooms[i%len(rooms)]}
	}

	teams := make([]Team, numTeams)
	for i := range teams {
		members := make([]*Student, teamSize)
		for j := range members {
			st := &Student{ID: fmt.Sprintf("s%03d", i*teamSize+j)}
			for range 1 + rand.IntN(3) {
				st.Busy = append(st.Busy, randomSlot(60+30*rand.IntN(4)))
			}
			members[j] = st
		}
		teams[i] = Team{
			ID:        fmt.Sprintf("team%02d", i+1),
			Assistant: fmt.Sprintf("assistant%d", i%numAssistants+1),
			Members:   members,
		}
	}
	return NewTimetable(teams, terms)
}
