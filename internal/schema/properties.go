package schema

import "strings"

// Well-known property names read by finders and detection queries.
const (
	PropAccountNumber            = "accountNumber"
	PropIdentificationNumber     = "identificationNumber"
	PropDeviceID                 = "deviceId"
	PropTransactionID            = "transactionId"
	PropRiskScore                = "riskScore"
	PropAmount                   = "amount"
	PropDate                     = "date"
	PropCreationDate             = "creationDate"
	PropBalanceChangePercent     = "balanceChangePercent"
	PropLastBalanceChangeDate    = "lastBalanceChangeDate"
	PropLatitude                 = "latitude"
	PropLongitude                = "longitude"
	PropAverageTransactionAmount = "averageTransactionAmount"
	PropAccountAgeInDays         = "accountAgeInDays"
)

// DateTimePattern is the ISO-8601 shape a temporal property must have to be
// read as a datetime: a calendar date, optionally followed by a time of day,
// an offset and a zone id. toString of a stored Date, LocalDateTime or
// DateTime always matches it.
const DateTimePattern = `[0-9]{4}-(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])` +
	`(T([01][0-9]|2[0-3]):[0-5][0-9](:[0-5][0-9]([.][0-9]{1,9})?)?(Z|[+-][0-9]{2}(:?[0-9]{2})?)?(\[[^\]]+\])?)?`

// DateTimeOf wraps a Cypher expression so that temporal properties compare as
// datetimes whether they were stored as ISO-8601 strings or as temporal values.
// Values of any other shape yield null instead of failing the query, so they
// drop out of comparisons.
func DateTimeOf(expr string) string {
	text := "toString(" + expr + ")"
	return "CASE WHEN " + text + " =~ '" + strings.ReplaceAll(DateTimePattern, `\`, `\\`) +
		"' THEN datetime(" + text + ") END"
}
