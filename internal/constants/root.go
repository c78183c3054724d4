package constants

// SessionState represents where a user is routed
type SessionState int

// Category groups habits for display
type Category string

// DayStatus classifies a calendar day by completion
type DayStatus string

const (
	AppName            = "thirty"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/thirty"
	DefaultDataFile    = "thirty.db"
	PostgresDataPath   = "postgres"
	ConnectionEnvVar   = "THIRTY_DB_CONNECTION"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// ChallengeDays is the length of a challenge and of the streak scan window
	ChallengeDays = 30

	// Password rules
	MinPasswordLength = 6
	MaxPasswordLength = 50

	// Record keys
	UsersKey              = "users"
	CurrentUserKey        = "currentUser"
	PlanKeyPrefix         = "plan_"
	SetupHabitsKeyPrefix  = "setup_habits_"
	TrackingKeyPrefix     = "tracking_"
	RecordDocumentVersion = 1

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "thirty-"

	// Writer lock
	LockfileSuffix = ".lock"

	DefaultHabitEmoji = "✨"

	// Categories
	CategoryFitness      Category = "fitness"
	CategoryNutrition    Category = "nutrition"
	CategoryWellness     Category = "wellness"
	CategoryGrowth       Category = "growth"
	CategoryProductivity Category = "productivity"
	CategoryCustom       Category = "custom"

	// Day statuses
	DayEmpty   DayStatus = "empty"
	DayPartial DayStatus = "partial"
	DayFull    DayStatus = "full"
)

// Session States
const (
	StateUnauthenticated SessionState = iota
	StateNeedsPlan
	StateActive
)

// Categories lists every category in display order
var Categories = []Category{
	CategoryFitness,
	CategoryNutrition,
	CategoryWellness,
	CategoryGrowth,
	CategoryProductivity,
	CategoryCustom,
}

// PopularEmojis are offered by the add-habit form
var PopularEmojis = []string{"💪", "🥗", "📚", "⚡", "🧘", "💧", "🏃", "🎯", "🔥", "✨", "🌟", "💎"}

func (s SessionState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateNeedsPlan:
		return "needs-plan"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}
