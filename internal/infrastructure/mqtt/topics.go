package mqtt

import "fmt"

// Topic prefixes.
const (
	// TopicPrefix is the base for all facade topics.
	TopicPrefix = "dbfacade"

	// TopicPrefixSystem is the base for process-level topics.
	TopicPrefixSystem = TopicPrefix + "/system"

	// TopicPrefixDatabase is the base for per-database topics.
	TopicPrefixDatabase = TopicPrefix + "/database"
)

// Topics provides builders for facade MQTT topics.
//
//	topics := mqtt.Topics{}
//	statusTopic := topics.DatabaseStatus("bot")
//	// Returns: "dbfacade/database/bot/status"
type Topics struct{}

// SystemStatus returns the process status topic carrying the LWT.
//
// Example: dbfacade/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// DatabaseStatus returns the retained connection status topic of a database.
//
// Example: dbfacade/database/bot/status
func (Topics) DatabaseStatus(database string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefixDatabase, sanitizeLevel(database))
}

// DatabaseEvent returns the topic for one event type of a database.
//
// Example: dbfacade/database/bot/event/table_created
func (Topics) DatabaseEvent(database, eventType string) string {
	return fmt.Sprintf("%s/%s/event/%s", TopicPrefixDatabase, sanitizeLevel(database), eventType)
}

// sanitizeLevel makes a database name usable as a single topic level.
// SQLite databases are named by file path, which contains separators.
func sanitizeLevel(s string) string {
	if s == "" {
		return "_"
	}
	out := []byte(s)
	for i, b := range out {
		switch b {
		case '/', '+', '#':
			out[i] = '_'
		}
	}
	return string(out)
}
