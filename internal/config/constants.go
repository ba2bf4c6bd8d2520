package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./bookstore.db"

	// DefaultBadgerPath is the default directory for the Badger collection store
	DefaultBadgerPath = "./bookstore-badger"

	// DefaultOpenLibraryURL is the metadata source used for enrichment
	DefaultOpenLibraryURL = "https://openlibrary.org"
)
