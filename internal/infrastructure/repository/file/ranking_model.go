package file

import (
	"strconv"

	"github.com/copperpitch/youthrank/internal/domain/ranking"
)

type rankingRowModel struct {
	Rank            int    `csv:"rank"`
	TeamKey         string `csv:"team_key"`
	TeamName        string `csv:"team_name"`
	State           string `csv:"state"`
	Status          string `csv:"status"`
	GamesPlayed     int    `csv:"games_played"`
	Wins            int    `csv:"wins"`
	Losses          int    `csv:"losses"`
	Ties            int    `csv:"ties"`
	GoalsFor        int    `csv:"goals_for"`
	GoalsAgainst    int    `csv:"goals_against"`
	OffenseRaw      string `csv:"offense_raw"`
	DefenseRaw      string `csv:"defense_raw"`
	SOSRaw          string `csv:"sos_raw"`
	OffenseNorm     string `csv:"offense_norm"`
	DefenseNorm     string `csv:"defense_norm"`
	SOSNorm         string `csv:"sos_norm"`
	PowerScore      string `csv:"power_score"`
	GamesPenalty    string `csv:"games_penalty"`
	PowerScoreAdj   string `csv:"power_score_adj"`
	LastGameDate    string `csv:"last_game_date"`
	CrossAgeGames   int    `csv:"cross_age_games"`
	CrossAgePct     string `csv:"cross_age_pct"`
	CrossStateGames int    `csv:"cross_state_games"`
	CrossStatePct   string `csv:"cross_state_pct"`
}

type connectivityRowModel struct {
	TeamKey       string `csv:"team_key"`
	ComponentID   int    `csv:"component_id"`
	ComponentSize int    `csv:"component_size"`
	Degree        int    `csv:"degree"`
}

// Scores carry six decimals, percentages four; fixed widths keep the
// output byte-stable and diffs readable.
func formatScore(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
func formatPct(v float64) string   { return strconv.FormatFloat(v, 'f', 4, 64) }

func toRankingRow(r ranking.Row) rankingRowModel {
	return rankingRowModel{
		Rank:            r.Rank,
		TeamKey:         r.TeamKey,
		TeamName:        r.TeamName,
		State:           r.State,
		Status:          r.Status,
		GamesPlayed:     r.GamesPlayed,
		Wins:            r.Wins,
		Losses:          r.Losses,
		Ties:            r.Ties,
		GoalsFor:        r.GoalsFor,
		GoalsAgainst:    r.GoalsAgainst,
		OffenseRaw:      formatScore(r.OffenseRaw),
		DefenseRaw:      formatScore(r.DefenseRaw),
		SOSRaw:          formatScore(r.SOSRaw),
		OffenseNorm:     formatScore(r.OffenseNorm),
		DefenseNorm:     formatScore(r.DefenseNorm),
		SOSNorm:         formatScore(r.SOSNorm),
		PowerScore:      formatScore(r.PowerScore),
		GamesPenalty:    formatScore(r.GamesPenalty),
		PowerScoreAdj:   formatScore(r.PowerScoreAdj),
		LastGameDate:    r.LastGameDate.Format(matchDateLayout),
		CrossAgeGames:   r.CrossAgeGames,
		CrossAgePct:     formatPct(r.CrossAgePct),
		CrossStateGames: r.CrossStateGames,
		CrossStatePct:   formatPct(r.CrossStatePct),
	}
}

func toConnectivityRow(r ranking.ConnectivityRow) connectivityRowModel {
	return connectivityRowModel{
		TeamKey:       r.TeamKey,
		ComponentID:   r.ComponentID,
		ComponentSize: r.ComponentSize,
		Degree:        r.Degree,
	}
}
