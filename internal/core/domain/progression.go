package domain

// TitlePrivileges are the account limits a title unlocks.
type TitlePrivileges struct {
	DailyActiveHabits int `json:"daily_active_habits"`
	TotalHabits       int `json:"total_habits"`
	PublicHabits      int `json:"public_habits"`
	StatsDays         int `json:"stats_days"`
}

// TitleRank is one rung of the progression ladder. Entry is gated by
// level; the Mentor rung additionally requires premium.
type TitleRank struct {
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	LevelMin        int             `json:"level_min"`
	LevelMax        int             `json:"level_max"`
	RequiresPremium bool            `json:"requires_premium"`
	Order           int             `json:"order"`
	Privileges      TitlePrivileges `json:"privileges"`
}

var titleLadder = []TitleRank{
	{
		Code: "novice", Name: "Novice", LevelMin: 1, LevelMax: 10, Order: 1,
		Privileges: TitlePrivileges{DailyActiveHabits: 2, TotalHabits: 3, PublicHabits: 0, StatsDays: 7},
	},
	{
		Code: "explorer", Name: "Explorer", LevelMin: 10, LevelMax: 40, Order: 2,
		Privileges: TitlePrivileges{DailyActiveHabits: 5, TotalHabits: 8, PublicHabits: 3, StatsDays: 30},
	},
	{
		Code: "leader", Name: "Leader", LevelMin: 40, LevelMax: 70, Order: 3,
		Privileges: TitlePrivileges{DailyActiveHabits: 10, TotalHabits: 15, PublicHabits: 10, StatsDays: 90},
	},
	{
		Code: "mentor", Name: "Mentor", LevelMin: 70, LevelMax: 100, Order: 4, RequiresPremium: true,
		Privileges: TitlePrivileges{DailyActiveHabits: 50, TotalHabits: 50, PublicHabits: 10, StatsDays: 365},
	},
}

// TitleLadder returns the full ladder in display order.
func TitleLadder() []TitleRank {
	return append([]TitleRank{}, titleLadder...)
}

// TitleForLevel walks the ladder to the highest rung the level reaches.
// Premium-only rungs are skipped for non-premium accounts.
func TitleForLevel(level int, premium bool) TitleRank {
	current := titleLadder[0]
	for _, rank := range titleLadder {
		if rank.RequiresPremium && !premium {
			continue
		}
		if level >= rank.LevelMin {
			current = rank
		}
	}
	return current
}

// TitleStatus is a ladder rung annotated for the viewing user.
type TitleStatus struct {
	TitleRank
	IsCurrent bool `json:"is_current"`
	IsReached bool `json:"is_reached"`
	IsLocked  bool `json:"is_locked"`
}

func TitleStatuses(level int, premium bool) []TitleStatus {
	current := TitleForLevel(level, premium)
	statuses := make([]TitleStatus, 0, len(titleLadder))
	for _, rank := range titleLadder {
		statuses = append(statuses, TitleStatus{
			TitleRank: rank,
			IsCurrent: rank.Code == current.Code,
			IsReached: rank.Order <= current.Order,
			IsLocked:  rank.RequiresPremium && !premium,
		})
	}
	return statuses
}

// Quest types, each measurable from the account's own state.
const (
	QuestCreateHabit   = "create_habit"
	QuestPublicCreated = "public_habit_created"
	QuestJoinPublic    = "join_public_habit"
	QuestStreakDays    = "streak_days"
	QuestBalancePoints = "balance_points"
	QuestLevelReached  = "level_reached"
)

// Quest is one achievement in the catalog, grouped by the title track
// it belongs to.
type Quest struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
	XP          int    `json:"xp"`
	Group       string `json:"group"`
	Type        string `json:"type"`
	Target      int    `json:"target"`
	Order       int    `json:"order"`
}

var questCatalog = []Quest{
	{Code: "novice_create_habit", Title: "Create your first habit", Description: "Start tracking anything", XP: 25, Group: "novice", Type: QuestCreateHabit, Target: 1, Order: 1},
	{Code: "novice_streak_3", Title: "3-day streak", Description: "On any habit", XP: 20, Group: "novice", Type: QuestStreakDays, Target: 3, Order: 2},
	{Code: "novice_balance", Title: "Explore the balance wheel", Description: "Score 10 points in two categories", XP: 15, Group: "novice", Type: QuestBalancePoints, Target: 10, Order: 3},
	{Code: "novice_level_10", Title: "Reach level 10", Description: "Awarded automatically", XP: 30, Group: "novice", Type: QuestLevelReached, Target: 10, Order: 4},
	{Code: "explorer_public_create", Title: "Create a public habit", Description: "Visible to everyone", XP: 30, Group: "explorer", Type: QuestPublicCreated, Target: 1, Order: 1},
	{Code: "explorer_join_public", Title: "Join a public habit", Description: "Copy someone else's habit", XP: 25, Group: "explorer", Type: QuestJoinPublic, Target: 1, Order: 2},
	{Code: "explorer_streak_7", Title: "7-day streak", Description: "On any habit", XP: 40, Group: "explorer", Type: QuestStreakDays, Target: 7, Order: 3},
	{Code: "explorer_level_40", Title: "Reach level 40", Description: "Awarded automatically", XP: 50, Group: "explorer", Type: QuestLevelReached, Target: 40, Order: 4},
	{Code: "leader_streak_14", Title: "14-day streak", Description: "On one habit", XP: 50, Group: "leader", Type: QuestStreakDays, Target: 14, Order: 1},
	{Code: "leader_level_70", Title: "Reach level 70", Description: "Awarded automatically", XP: 100, Group: "leader", Type: QuestLevelReached, Target: 70, Order: 2},
	{Code: "mentor_level_100", Title: "Reach level 100", Description: "Awarded automatically", XP: 150, Group: "mentor", Type: QuestLevelReached, Target: 100, Order: 1},
}

// QuestSignals are the account facts quest progress is measured
// against.
type QuestSignals struct {
	HabitCount       int
	PublicHabitCount int
	JoinedPublic     bool
	BestStreak       int
	Level            int

	// BalanceRunnerUp is the second-highest category value on the
	// balance wheel; the balance quest wants two categories at the
	// target, so the runner-up is the binding one.
	BalanceRunnerUp int
}

// QuestStatus is a catalog quest annotated with the user's progress.
type QuestStatus struct {
	Quest
	ProgressCurrent int  `json:"progress_current"`
	ProgressTarget  int  `json:"progress_target"`
	ProgressPercent int  `json:"progress_percent"`
	Completed       bool `json:"completed"`
}

// EvaluateQuests measures every catalog quest against the signals.
func EvaluateQuests(sig QuestSignals) []QuestStatus {
	statuses := make([]QuestStatus, 0, len(questCatalog))
	for _, q := range questCatalog {
		current := 0
		switch q.Type {
		case QuestCreateHabit:
			current = sig.HabitCount
		case QuestPublicCreated:
			current = sig.PublicHabitCount
		case QuestJoinPublic:
			if sig.JoinedPublic {
				current = 1
			}
		case QuestStreakDays:
			current = sig.BestStreak
		case QuestBalancePoints:
			current = sig.BalanceRunnerUp
		case QuestLevelReached:
			current = sig.Level
		}
		if current > q.Target {
			current = q.Target
		}
		percent := 0
		if q.Target > 0 {
			percent = current * 100 / q.Target
		}
		statuses = append(statuses, QuestStatus{
			Quest:           q,
			ProgressCurrent: current,
			ProgressTarget:  q.Target,
			ProgressPercent: percent,
			Completed:       current >= q.Target,
		})
	}
	return statuses
}

// Product is one shop catalog row. Checkout goes through the payment
// provider and stays outside this service; the catalog is display data.
type Product struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        int    `json:"price"`
	Currency     string `json:"currency"`
	DurationDays int    `json:"duration_days"`
}

var productCatalog = []Product{
	{Code: "premium_month", Name: "Premium", Description: "Unlocks the Mentor track and premium limits", Price: 299, Currency: "RUB", DurationDays: 30},
	{Code: "streak_shield", Name: "Streak shield", Description: "Covers one missed day before the streak breaks", Price: 99, Currency: "RUB"},
	{Code: "extra_habit_slot", Name: "Extra habit slot", Description: "One habit beyond the title limit", Price: 149, Currency: "RUB"},
}

// Products returns the active shop catalog.
func Products() []Product {
	return append([]Product{}, productCatalog...)
}
