package common

// AuthorizationHeader is the HTTP header carrying the bearer token on
// outbound API requests.
const AuthorizationHeader = "Authorization"

// StoreName namespaces the durable local store; it is recorded in the
// metadata table together with StoreVersion so rehydration can detect
// foreign or future databases.
const StoreName = "macroledger-nutrition"

// StoreVersion is bumped when the persisted shape changes in a way the
// additive migrations cannot express.
const StoreVersion = "1"
