package types

// FrontendMessage identifies a message the client sends to the backend.
type FrontendMessage byte

// BackendMessage identifies a message the backend sends to the client.
type BackendMessage byte

// DescribeMessage represents the kind byte of a Describe/Close message.
type DescribeMessage byte

// http://www.postgresql.org/docs/current/static/protocol-message-formats.html
const (
	FrontendBind      FrontendMessage = 'B'
	FrontendClose     FrontendMessage = 'C'
	FrontendCopyData  FrontendMessage = 'd'
	FrontendCopyDone  FrontendMessage = 'c'
	FrontendCopyFail  FrontendMessage = 'f'
	FrontendDescribe  FrontendMessage = 'D'
	FrontendExecute   FrontendMessage = 'E'
	FrontendFlush     FrontendMessage = 'H'
	FrontendParse     FrontendMessage = 'P'
	FrontendPassword  FrontendMessage = 'p'
	FrontendQuery     FrontendMessage = 'Q'
	FrontendSync      FrontendMessage = 'S'
	FrontendTerminate FrontendMessage = 'X'

	BackendAuth                 BackendMessage = 'R'
	BackendBackendKeyData       BackendMessage = 'K'
	BackendBindComplete         BackendMessage = '2'
	BackendCommandComplete      BackendMessage = 'C'
	BackendCloseComplete        BackendMessage = '3'
	BackendCopyBothResponse     BackendMessage = 'W'
	BackendCopyData             BackendMessage = 'd'
	BackendCopyDone             BackendMessage = 'c'
	BackendCopyInResponse       BackendMessage = 'G'
	BackendCopyOutResponse      BackendMessage = 'H'
	BackendDataRow              BackendMessage = 'D'
	BackendEmptyQuery           BackendMessage = 'I'
	BackendErrorResponse        BackendMessage = 'E'
	BackendNoticeResponse       BackendMessage = 'N'
	BackendNoData               BackendMessage = 'n'
	BackendNotificationResponse BackendMessage = 'A'
	BackendParameterDescription BackendMessage = 't'
	BackendParameterStatus      BackendMessage = 'S'
	BackendParseComplete        BackendMessage = '1'
	BackendPortalSuspended      BackendMessage = 's'
	BackendReady                BackendMessage = 'Z'
	BackendRowDescription       BackendMessage = 'T'

	DescribePortal    DescribeMessage = 'P'
	DescribeStatement DescribeMessage = 'S'
)

func (m FrontendMessage) String() string {
	switch m {
	case FrontendBind:
		return "Bind"
	case FrontendClose:
		return "Close"
	case FrontendCopyData:
		return "CopyData"
	case FrontendCopyDone:
		return "CopyDone"
	case FrontendCopyFail:
		return "CopyFail"
	case FrontendDescribe:
		return "Describe"
	case FrontendExecute:
		return "Execute"
	case FrontendFlush:
		return "Flush"
	case FrontendParse:
		return "Parse"
	case FrontendPassword:
		return "Password"
	case FrontendQuery:
		return "Query"
	case FrontendSync:
		return "Sync"
	case FrontendTerminate:
		return "Terminate"
	default:
		return "Unknown"
	}
}

func (m BackendMessage) String() string {
	switch m {
	case BackendAuth:
		return "Auth"
	case BackendBackendKeyData:
		return "BackendKeyData"
	case BackendBindComplete:
		return "BindComplete"
	case BackendCommandComplete:
		return "CommandComplete"
	case BackendCloseComplete:
		return "CloseComplete"
	case BackendCopyBothResponse:
		return "CopyBothResponse"
	case BackendCopyData:
		return "CopyData"
	case BackendCopyDone:
		return "CopyDone"
	case BackendCopyInResponse:
		return "CopyInResponse"
	case BackendCopyOutResponse:
		return "CopyOutResponse"
	case BackendDataRow:
		return "DataRow"
	case BackendEmptyQuery:
		return "EmptyQuery"
	case BackendErrorResponse:
		return "ErrorResponse"
	case BackendNoticeResponse:
		return "NoticeResponse"
	case BackendNoData:
		return "NoData"
	case BackendNotificationResponse:
		return "NotificationResponse"
	case BackendParameterDescription:
		return "ParameterDescription"
	case BackendParameterStatus:
		return "ParameterStatus"
	case BackendParseComplete:
		return "ParseComplete"
	case BackendPortalSuspended:
		return "PortalSuspended"
	case BackendReady:
		return "Ready"
	case BackendRowDescription:
		return "RowDescription"
	default:
		return "Unknown"
	}
}

func (m DescribeMessage) String() string {
	switch m {
	case DescribePortal:
		return "Portal"
	case DescribeStatement:
		return "Statement"
	default:
		return "Unknown"
	}
}

// TransactionStatus is the single status byte carried by ReadyForQuery.
type TransactionStatus byte

const (
	// TransactionIdle indicates the session is not inside a transaction block.
	TransactionIdle TransactionStatus = 'I'
	// TransactionInBlock indicates the session is inside an open transaction block.
	TransactionInBlock TransactionStatus = 'T'
	// TransactionFailedBlock indicates the session is inside a failed
	// transaction block; statements will be rejected until the block ends.
	TransactionFailedBlock TransactionStatus = 'E'
)

func (s TransactionStatus) String() string {
	switch s {
	case TransactionIdle:
		return "idle"
	case TransactionInBlock:
		return "in-transaction"
	case TransactionFailedBlock:
		return "failed-transaction"
	default:
		return "unknown"
	}
}

// AuthType is the 32-bit discriminator carried by the first field of an
// Authentication message.
type AuthType int32

// http://www.postgresql.org/docs/current/protocol-message-formats.html#PROTOCOL-MESSAGE-FORMATS-AUTHENTICATIONOK
const (
	AuthOk                AuthType = 0
	AuthKerberosV5        AuthType = 2
	AuthCleartextPassword AuthType = 3
	AuthMD5Password       AuthType = 5
	AuthSCMCredential     AuthType = 6
	AuthGSS               AuthType = 7
	AuthGSSContinue       AuthType = 8
	AuthSSPI              AuthType = 9
	AuthSASL              AuthType = 10
	AuthSASLContinue      AuthType = 11
	AuthSASLFinal         AuthType = 12
)
