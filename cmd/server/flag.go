package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

const (
	environmentVariablePort             = "PORT"
	environmentVariableDatabaseBackend  = "DATABASE_BACKEND"
	environmentVariableDatabaseURL      = "DATABASE_URL"
	environmentVariableFirestoreProject = "FIRESTORE_PROJECT_ID"
	environmentVariableWordsFile        = "WORDS_FILE"
	environmentVariableLexiconWorkers   = "LEXICON_WORKERS"
	environmentVariableWordCacheDir     = "WORD_CACHE_DIR"
	environmentVariableOpenAIKey        = "OPENAI_API_KEY"
	environmentVariableOpenAIModel      = "OPENAI_MODEL"
	environmentVariableOpenAIBaseURL    = "OPENAI_BASE_URL"
	environmentVariableOracleRate       = "ORACLE_REQUESTS_PER_SECOND"
	environmentVariableDailySalt        = "DAILY_SALT"
	environmentVariableDebugGame        = "DEBUG_MESSAGES"
	environmentVariableLogLevel         = "LOG_LEVEL"
	environmentVariableLogPretty        = "LOG_PRETTY"
	environmentVariableChallengeToken   = "ACME_CHALLENGE_TOKEN"
	environmentVariableChallengeKey     = "ACME_CHALLENGE_KEY"
	environmentVariableTLSCertFile      = "TLS_CERT_FILE"
	environmentVariableTLSKeyFile       = "TLS_KEY_FILE"
)

// Database backends.
const (
	backendMemory    = "memory"
	backendPostgres  = "postgres"
	backendFirestore = "firestore"
	backendMongo     = "mongo"
)

// mainFlags are the configuration options which can be easily configured at run startup for different environments.
type mainFlags struct {
	port             int
	databaseBackend  string
	databaseURL      string
	firestoreProject string
	wordsFile        string
	lexiconWorkers   int
	wordCacheDir     string
	openAIKey        string
	openAIModel      string
	openAIBaseURL    string
	oracleRate       float64
	dailySalt        string
	debugGame        bool
	logLevel         string
	logPretty        bool
	challengeToken   string
	challengeKey     string
	tlsCertFile      string
	tlsKeyFile       string
}

const (
	defaultPort           = 8000
	defaultLexiconWorkers = 4
	defaultOracleRate     = 2.0
	defaultDailySalt      = "swipe-words"
	defaultLogLevel       = "info"
)

// usage prints how to run the server to the flagset's output.
func usage(fs *flag.FlagSet) {
	envVars := []string{
		environmentVariablePort,
		environmentVariableDatabaseBackend,
		environmentVariableDatabaseURL,
		environmentVariableFirestoreProject,
		environmentVariableWordsFile,
		environmentVariableLexiconWorkers,
		environmentVariableWordCacheDir,
		environmentVariableOpenAIKey,
		environmentVariableOpenAIModel,
		environmentVariableOpenAIBaseURL,
		environmentVariableOracleRate,
		environmentVariableDailySalt,
		environmentVariableDebugGame,
		environmentVariableLogLevel,
		environmentVariableLogPretty,
		environmentVariableChallengeToken,
		environmentVariableChallengeKey,
		environmentVariableTLSCertFile,
		environmentVariableTLSKeyFile,
	}
	fmt.Fprintf(fs.Output(), "Runs the server\n")
	fmt.Fprintf(fs.Output(), "Reads environment variables when possible: [%s]\n", strings.Join(envVars, ","))
	fmt.Fprintf(fs.Output(), "Usage of %s:\n", fs.Name())
	fs.PrintDefaults()
}

// newFlagSet creates a flagSet that populates the specified mainFlags.
func (m *mainFlags) newFlagSet(osLookupEnvFunc func(string) (string, bool)) *flag.FlagSet {
	fs := flag.NewFlagSet("main", flag.ExitOnError)
	fs.Usage = func() {
		usage(fs) // [lazy evaluation]
	}
	envValue := func(key, defaultValue string) string {
		if envValue, ok := osLookupEnvFunc(key); ok {
			return envValue
		}
		return defaultValue
	}
	envValueInt := func(key string, defaultValue int) int {
		v, err := strconv.Atoi(envValue(key, ""))
		if err != nil {
			return defaultValue
		}
		return v
	}
	envValueFloat := func(key string, defaultValue float64) float64 {
		v, err := strconv.ParseFloat(envValue(key, ""), 64)
		if err != nil {
			return defaultValue
		}
		return v
	}
	envPresent := func(key string) bool {
		_, ok := osLookupEnvFunc(key)
		return ok
	}
	fs.IntVar(&m.port, "port", envValueInt(environmentVariablePort, defaultPort), "The TCP port for server requests.")
	fs.StringVar(&m.databaseBackend, "database-backend", envValue(environmentVariableDatabaseBackend, backendMemory), "The database to store users and games in: memory, postgres, firestore, or mongo.")
	fs.StringVar(&m.databaseURL, "data-source", envValue(environmentVariableDatabaseURL, ""), "The data source to the postgres or mongo database (connection URI).")
	fs.StringVar(&m.firestoreProject, "firestore-project", envValue(environmentVariableFirestoreProject, ""), "The google cloud project id of the firestore database.")
	fs.StringVar(&m.wordsFile, "words-file", envValue(environmentVariableWordsFile, ""), "The list of valid lower-case words in the lexicon.  The built-in list is used if not set.")
	fs.IntVar(&m.lexiconWorkers, "lexicon-workers", envValueInt(environmentVariableLexiconWorkers, defaultLexiconWorkers), "The number of goroutines that look up words in the lexicon.")
	fs.StringVar(&m.wordCacheDir, "word-cache-dir", envValue(environmentVariableWordCacheDir, ""), "The directory of the cache of words players have found.  The cache is kept in memory if not set.")
	fs.StringVar(&m.openAIKey, "openai-api-key", envValue(environmentVariableOpenAIKey, ""), "The key to ask the openai api about words that are not in the lexicon.  Words not in the lexicon or ledger cannot be validated if not set.")
	fs.StringVar(&m.openAIModel, "openai-model", envValue(environmentVariableOpenAIModel, ""), "The chat model to ask about words.")
	fs.StringVar(&m.openAIBaseURL, "openai-base-url", envValue(environmentVariableOpenAIBaseURL, ""), "The address of an openai compatible api.")
	fs.Float64Var(&m.oracleRate, "oracle-rate", envValueFloat(environmentVariableOracleRate, defaultOracleRate), "The most requests per second to make to the openai api.")
	fs.StringVar(&m.dailySalt, "daily-salt", envValue(environmentVariableDailySalt, defaultDailySalt), "Makes the daily challenge words hard to predict.")
	fs.BoolVar(&m.debugGame, "debug-game", envPresent(environmentVariableDebugGame), "Logs message types in the console when messages are passed between components.")
	fs.StringVar(&m.logLevel, "log-level", envValue(environmentVariableLogLevel, defaultLogLevel), "The lowest level of messages to log.")
	fs.BoolVar(&m.logPretty, "log-pretty", envPresent(environmentVariableLogPretty), "Logs human-readable lines instead of json.")
	fs.StringVar(&m.challengeToken, "acme-challenge-token", envValue(environmentVariableChallengeToken, ""), "The ACME HTTP-01 Challenge token used to get a certificate.")
	fs.StringVar(&m.challengeKey, "acme-challenge-key", envValue(environmentVariableChallengeKey, ""), "The ACME HTTP-01 Challenge key used to get a certificate.")
	fs.StringVar(&m.tlsCertFile, "tls-cert-file", envValue(environmentVariableTLSCertFile, ""), "The absolute path of the certificate file to use for TLS.")
	fs.StringVar(&m.tlsKeyFile, "tls-key-file", envValue(environmentVariableTLSKeyFile, ""), "The absolute path of the key file to use for TLS.")
	return fs
}

// newMainFlags creates a new, populated mainFlags structure.
// Fields are populated from command line arguments.
// If fields are not specified on the command line, environment variable values are used before defaulting to other defaults.
func newMainFlags(osArgs []string, osLookupEnvFunc func(string) (string, bool)) mainFlags {
	if len(osArgs) == 0 {
		osArgs = []string{""}
	}
	programArgs := osArgs[1:]
	var m mainFlags
	fs := m.newFlagSet(osLookupEnvFunc)
	fs.Parse(programArgs)
	return m
}
