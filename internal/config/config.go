package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ENV_PREFIX = "REPORTING_GATEWAY"

	URL_APP_NAME                   = "URL_App_Name"
	URL_PATH_PREFIX                = "URL_Path_Prefix"
	URL_BASE_PATH                  = "URL_Base_Path"
	HTTP_SHUTDOWN_TIMEOUT          = "HTTP_Shutdown_Timeout"
	SERVICE_TO_SERVICE_CREDENTIALS = "Service_To_Service_Credentials"
	PROFILE                        = "Enable_Profile"

	AUTH_SERVICE_URL         = "Auth_Service_Url"
	INVENTORY_SERVICE_URL    = "Inventory_Service_Url"
	ORDERS_SERVICE_URL       = "Orders_Service_Url"
	UPSTREAM_REQUEST_TIMEOUT = "Upstream_Request_Timeout"

	SERVICE_ACCOUNT_EMAIL       = "Service_Account_Email"
	SERVICE_ACCOUNT_PASSWORD    = "Service_Account_Password"
	CREDENTIAL_RENEWAL_INTERVAL = "Credential_Renewal_Interval"

	CONNECTION_INITIAL_DELAY = "Connection_Initial_Delay"
	CONNECTION_RETRY_DELAY   = "Connection_Retry_Delay"
	CONNECTION_MAX_ATTEMPTS  = "Connection_Max_Attempts"

	INVENTORY_SYNC_INTERVAL        = "Inventory_Sync_Interval"
	ROSTER_SYNC_INTERVAL           = "Roster_Sync_Interval"
	SETTLEMENT_ANALYSIS_INTERVAL   = "Settlement_Analysis_Interval"
	ROSTER_CREDENTIAL_WAIT_TIMEOUT = "Roster_Credential_Wait_Timeout"
	SETTLEMENT_PAID_CART_CACHE     = "Settlement_Paid_Cart_Cache_Size"

	REPORTING_DATABASE_HOST          = "Reporting_Database_Host"
	REPORTING_DATABASE_PORT          = "Reporting_Database_Port"
	REPORTING_DATABASE_USER          = "Reporting_Database_User"
	REPORTING_DATABASE_PASSWORD      = "Reporting_Database_Password"
	REPORTING_DATABASE_NAME          = "Reporting_Database_Name"
	REPORTING_DATABASE_SSL_MODE      = "Reporting_Database_Ssl_Mode"
	REPORTING_DATABASE_SSL_ROOT_CERT = "Reporting_Database_Ssl_Root_Cert"
	REPORTING_DATABASE_QUERY_TIMEOUT = "Reporting_Database_Query_Timeout"

	SYNC_EVENTS_KAFKA_BROKERS   = "Sync_Events_Kafka_Brokers"
	SYNC_EVENTS_TOPIC           = "Sync_Events_Topic"
	SYNC_EVENTS_BATCH_SIZE      = "Sync_Events_Batch_Size"
	SYNC_EVENTS_BATCH_BYTES     = "Sync_Events_Batch_Bytes"
	SYNC_EVENTS_KAFKA_USERNAME  = "Sync_Events_Kafka_Username"
	SYNC_EVENTS_KAFKA_PASSWORD  = "Sync_Events_Kafka_Password"
	SYNC_EVENTS_KAFKA_SASL_MECH = "Sync_Events_Kafka_Sasl_Mechanism"
	SYNC_EVENTS_KAFKA_CA        = "Sync_Events_Kafka_Ca"
)

type Config struct {
	UrlAppName                  string
	UrlPathPrefix               string
	UrlBasePath                 string
	HttpShutdownTimeout         time.Duration
	ServiceToServiceCredentials map[string]interface{}
	Profile                     bool

	AuthServiceUrl         string
	InventoryServiceUrl    string
	OrdersServiceUrl       string
	UpstreamRequestTimeout time.Duration

	ServiceAccountEmail       string
	ServiceAccountPassword    string
	CredentialRenewalInterval time.Duration

	ConnectionInitialDelay time.Duration
	ConnectionRetryDelay   time.Duration
	ConnectionMaxAttempts  int

	InventorySyncInterval       time.Duration
	RosterSyncInterval          time.Duration
	SettlementAnalysisInterval  time.Duration
	RosterCredentialWaitTimeout time.Duration
	SettlementPaidCartCacheSize int

	ReportingDatabaseHost         string
	ReportingDatabasePort         int
	ReportingDatabaseUser         string
	ReportingDatabasePassword     string
	ReportingDatabaseName         string
	ReportingDatabaseSslMode      string
	ReportingDatabaseSslRootCert  string
	ReportingDatabaseQueryTimeout time.Duration

	SyncEventsKafkaBrokers       []string
	SyncEventsTopic              string
	SyncEventsBatchSize          int
	SyncEventsBatchBytes         int
	SyncEventsKafkaUsername      string
	SyncEventsKafkaPassword      string
	SyncEventsKafkaSaslMechanism string
	SyncEventsKafkaCA            string
}

func (c Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", URL_PATH_PREFIX, c.UrlPathPrefix)
	fmt.Fprintf(&b, "%s: %s\n", URL_APP_NAME, c.UrlAppName)
	fmt.Fprintf(&b, "%s: %s\n", URL_BASE_PATH, c.UrlBasePath)
	fmt.Fprintf(&b, "%s: %s\n", HTTP_SHUTDOWN_TIMEOUT, c.HttpShutdownTimeout)
	fmt.Fprintf(&b, "%s: %t\n", PROFILE, c.Profile)
	fmt.Fprintf(&b, "%s: %s\n", AUTH_SERVICE_URL, c.AuthServiceUrl)
	fmt.Fprintf(&b, "%s: %s\n", INVENTORY_SERVICE_URL, c.InventoryServiceUrl)
	fmt.Fprintf(&b, "%s: %s\n", ORDERS_SERVICE_URL, c.OrdersServiceUrl)
	fmt.Fprintf(&b, "%s: %s\n", UPSTREAM_REQUEST_TIMEOUT, c.UpstreamRequestTimeout)
	fmt.Fprintf(&b, "%s: %s\n", SERVICE_ACCOUNT_EMAIL, c.ServiceAccountEmail)
	fmt.Fprintf(&b, "%s: %s\n", CREDENTIAL_RENEWAL_INTERVAL, c.CredentialRenewalInterval)
	fmt.Fprintf(&b, "%s: %s\n", CONNECTION_INITIAL_DELAY, c.ConnectionInitialDelay)
	fmt.Fprintf(&b, "%s: %s\n", CONNECTION_RETRY_DELAY, c.ConnectionRetryDelay)
	fmt.Fprintf(&b, "%s: %d\n", CONNECTION_MAX_ATTEMPTS, c.ConnectionMaxAttempts)
	fmt.Fprintf(&b, "%s: %s\n", INVENTORY_SYNC_INTERVAL, c.InventorySyncInterval)
	fmt.Fprintf(&b, "%s: %s\n", ROSTER_SYNC_INTERVAL, c.RosterSyncInterval)
	fmt.Fprintf(&b, "%s: %s\n", SETTLEMENT_ANALYSIS_INTERVAL, c.SettlementAnalysisInterval)
	fmt.Fprintf(&b, "%s: %s\n", ROSTER_CREDENTIAL_WAIT_TIMEOUT, c.RosterCredentialWaitTimeout)
	fmt.Fprintf(&b, "%s: %d\n", SETTLEMENT_PAID_CART_CACHE, c.SettlementPaidCartCacheSize)
	fmt.Fprintf(&b, "%s: %s\n", REPORTING_DATABASE_HOST, c.ReportingDatabaseHost)
	fmt.Fprintf(&b, "%s: %d\n", REPORTING_DATABASE_PORT, c.ReportingDatabasePort)
	fmt.Fprintf(&b, "%s: %s\n", REPORTING_DATABASE_NAME, c.ReportingDatabaseName)
	fmt.Fprintf(&b, "%s: %s\n", REPORTING_DATABASE_SSL_MODE, c.ReportingDatabaseSslMode)
	fmt.Fprintf(&b, "%s: %s\n", REPORTING_DATABASE_QUERY_TIMEOUT, c.ReportingDatabaseQueryTimeout)
	fmt.Fprintf(&b, "%s: %s\n", SYNC_EVENTS_KAFKA_BROKERS, c.SyncEventsKafkaBrokers)
	fmt.Fprintf(&b, "%s: %s\n", SYNC_EVENTS_TOPIC, c.SyncEventsTopic)

	return b.String()
}

func GetConfig() *Config {
	options := viper.New()

	options.SetDefault(URL_PATH_PREFIX, "api")
	options.SetDefault(URL_APP_NAME, "reporting-gateway")
	options.SetDefault(HTTP_SHUTDOWN_TIMEOUT, 2)
	options.SetDefault(SERVICE_TO_SERVICE_CREDENTIALS, "")
	options.SetDefault(PROFILE, false)

	options.SetDefault(AUTH_SERVICE_URL, "http://localhost:3000/api")
	options.SetDefault(INVENTORY_SERVICE_URL, "http://localhost:16004")
	options.SetDefault(ORDERS_SERVICE_URL, "http://localhost:4010")
	options.SetDefault(UPSTREAM_REQUEST_TIMEOUT, 10)

	options.SetDefault(SERVICE_ACCOUNT_EMAIL, "")
	options.SetDefault(SERVICE_ACCOUNT_PASSWORD, "")
	options.SetDefault(CREDENTIAL_RENEWAL_INTERVAL, 20*60*60)

	options.SetDefault(CONNECTION_INITIAL_DELAY, 3)
	options.SetDefault(CONNECTION_RETRY_DELAY, 5)
	options.SetDefault(CONNECTION_MAX_ATTEMPTS, 3)

	options.SetDefault(INVENTORY_SYNC_INTERVAL, 2*60*60)
	options.SetDefault(ROSTER_SYNC_INTERVAL, 21*60*60)
	options.SetDefault(SETTLEMENT_ANALYSIS_INTERVAL, 24*60*60)
	options.SetDefault(ROSTER_CREDENTIAL_WAIT_TIMEOUT, 10)
	options.SetDefault(SETTLEMENT_PAID_CART_CACHE, 1024)

	options.SetDefault(REPORTING_DATABASE_HOST, "localhost")
	options.SetDefault(REPORTING_DATABASE_PORT, 5432)
	options.SetDefault(REPORTING_DATABASE_USER, "reporting")
	options.SetDefault(REPORTING_DATABASE_PASSWORD, "reporting")
	options.SetDefault(REPORTING_DATABASE_NAME, "reporting-gateway")
	options.SetDefault(REPORTING_DATABASE_SSL_MODE, "disable")
	options.SetDefault(REPORTING_DATABASE_SSL_ROOT_CERT, "db_ssl_root_cert.pem")
	options.SetDefault(REPORTING_DATABASE_QUERY_TIMEOUT, 5)

	options.SetDefault(SYNC_EVENTS_KAFKA_BROKERS, []string{})
	options.SetDefault(SYNC_EVENTS_TOPIC, "platform.reporting-gateway.sync-events")
	options.SetDefault(SYNC_EVENTS_BATCH_SIZE, 100)
	options.SetDefault(SYNC_EVENTS_BATCH_BYTES, 1048576)
	options.SetDefault(SYNC_EVENTS_KAFKA_USERNAME, "")
	options.SetDefault(SYNC_EVENTS_KAFKA_PASSWORD, "")
	options.SetDefault(SYNC_EVENTS_KAFKA_SASL_MECH, "plain")
	options.SetDefault(SYNC_EVENTS_KAFKA_CA, "")

	options.SetEnvPrefix(ENV_PREFIX)
	options.AutomaticEnv()

	return &Config{
		UrlPathPrefix:               options.GetString(URL_PATH_PREFIX),
		UrlAppName:                  options.GetString(URL_APP_NAME),
		UrlBasePath:                 buildUrlBasePath(options.GetString(URL_PATH_PREFIX), options.GetString(URL_APP_NAME)),
		HttpShutdownTimeout:         options.GetDuration(HTTP_SHUTDOWN_TIMEOUT) * time.Second,
		ServiceToServiceCredentials: options.GetStringMap(SERVICE_TO_SERVICE_CREDENTIALS),
		Profile:                     options.GetBool(PROFILE),

		AuthServiceUrl:         options.GetString(AUTH_SERVICE_URL),
		InventoryServiceUrl:    options.GetString(INVENTORY_SERVICE_URL),
		OrdersServiceUrl:       options.GetString(ORDERS_SERVICE_URL),
		UpstreamRequestTimeout: options.GetDuration(UPSTREAM_REQUEST_TIMEOUT) * time.Second,

		ServiceAccountEmail:       options.GetString(SERVICE_ACCOUNT_EMAIL),
		ServiceAccountPassword:    options.GetString(SERVICE_ACCOUNT_PASSWORD),
		CredentialRenewalInterval: options.GetDuration(CREDENTIAL_RENEWAL_INTERVAL) * time.Second,

		ConnectionInitialDelay: options.GetDuration(CONNECTION_INITIAL_DELAY) * time.Second,
		ConnectionRetryDelay:   options.GetDuration(CONNECTION_RETRY_DELAY) * time.Second,
		ConnectionMaxAttempts:  options.GetInt(CONNECTION_MAX_ATTEMPTS),

		InventorySyncInterval:       options.GetDuration(INVENTORY_SYNC_INTERVAL) * time.Second,
		RosterSyncInterval:          options.GetDuration(ROSTER_SYNC_INTERVAL) * time.Second,
		SettlementAnalysisInterval:  options.GetDuration(SETTLEMENT_ANALYSIS_INTERVAL) * time.Second,
		RosterCredentialWaitTimeout: options.GetDuration(ROSTER_CREDENTIAL_WAIT_TIMEOUT) * time.Second,
		SettlementPaidCartCacheSize: options.GetInt(SETTLEMENT_PAID_CART_CACHE),

		ReportingDatabaseHost:         options.GetString(REPORTING_DATABASE_HOST),
		ReportingDatabasePort:         options.GetInt(REPORTING_DATABASE_PORT),
		ReportingDatabaseUser:         options.GetString(REPORTING_DATABASE_USER),
		ReportingDatabasePassword:     options.GetString(REPORTING_DATABASE_PASSWORD),
		ReportingDatabaseName:         options.GetString(REPORTING_DATABASE_NAME),
		ReportingDatabaseSslMode:      options.GetString(REPORTING_DATABASE_SSL_MODE),
		ReportingDatabaseSslRootCert:  options.GetString(REPORTING_DATABASE_SSL_ROOT_CERT),
		ReportingDatabaseQueryTimeout: options.GetDuration(REPORTING_DATABASE_QUERY_TIMEOUT) * time.Second,

		SyncEventsKafkaBrokers:       options.GetStringSlice(SYNC_EVENTS_KAFKA_BROKERS),
		SyncEventsTopic:              options.GetString(SYNC_EVENTS_TOPIC),
		SyncEventsBatchSize:          options.GetInt(SYNC_EVENTS_BATCH_SIZE),
		SyncEventsBatchBytes:         options.GetInt(SYNC_EVENTS_BATCH_BYTES),
		SyncEventsKafkaUsername:      options.GetString(SYNC_EVENTS_KAFKA_USERNAME),
		SyncEventsKafkaPassword:      options.GetString(SYNC_EVENTS_KAFKA_PASSWORD),
		SyncEventsKafkaSaslMechanism: options.GetString(SYNC_EVENTS_KAFKA_SASL_MECH),
		SyncEventsKafkaCA:            options.GetString(SYNC_EVENTS_KAFKA_CA),
	}
}

func buildUrlBasePath(pathPrefix string, appName string) string {
	return fmt.Sprintf("/%s/%s/v1", pathPrefix, appName)
}
