package session

import (
	"github.com/pgwireclient/pgwire/pgerr"
	"github.com/pgwireclient/pgwire/pgproto"
	"github.com/pgwireclient/pgwire/pkg/buffer"
	"github.com/pgwireclient/pgwire/pkg/types"
)

// Interceptor is handed any backend message the pump does not itself
// consume (RowDescription, DataRow, CommandComplete, ParseComplete,
// BindComplete, CloseComplete, NoData, PortalSuspended, ParameterDescription,
// CopyInResponse/CopyOutResponse/CopyBothResponse, CopyData during CopyOut,
// CopyDone, EmptyQueryResponse). Returning brk=true ends the pump early with
// no error.
type Interceptor func(t types.BackendMessage, r *buffer.Reader) (brk bool, err error)

// Result is returned by PollMessages.
type Result struct {
	Status types.TransactionStatus
	// BackendErr is set if an ErrorResponse was observed during the pump
	// cycle, whether or not finishOnError caused an early return.
	BackendErr error
}

// PollMessages reads framed backend messages until one of the four exits
// fires: ReadyForQuery, ErrorResponse with finishOnError,
// NotificationResponse callback requesting break, or interceptor requesting
// break. Notice messages go to NoticeCallback and are otherwise ignored.
// Exactly one ErrorResponse is permitted per pump cycle; a second is a
// protocol violation.
func (s *Session) PollMessages(finishOnError bool, interceptor Interceptor) (Result, error) {
	var result Result
	sawError := false

	for {
		t, _, err := s.reader.ReadTypedMsg()
		if err != nil {
			s.open = false
			return Result{}, err
		}
		s.hooks.FrameReceived(t)

		switch t {
		case types.BackendReady:
			status, err := pgproto.ParseReadyForQuery(s.reader)
			if err != nil {
				return Result{}, err
			}

			if s.expectedRFQ <= 0 {
				s.open = false
				return Result{}, pgerr.NewProtocolError("ReadyForQuery received with no outstanding request, expected_rfq <= 0")
			}

			s.TransactionStatus = status
			s.expectedRFQ--

			result.Status = status
			s.hooks.ReadyForQuery()
			return result, nil

		case types.BackendErrorResponse:
			fields, err := pgproto.ParseErrorFields(s.reader)
			if err != nil {
				return Result{}, err
			}

			if sawError {
				return Result{}, pgerr.NewProtocolError("second ErrorResponse before ReadyForQuery")
			}
			sawError = true

			backendErr := pgerr.NewBackendError(fields)
			result.BackendErr = backendErr
			s.hooks.BackendErrorObserved()

			if finishOnError {
				return result, nil
			}

		case types.BackendNoticeResponse:
			fields, err := pgproto.ParseErrorFields(s.reader)
			if err != nil {
				return Result{}, err
			}

			if s.NoticeCallback != nil {
				s.NoticeCallback(pgerr.Flatten(pgerr.NewBackendError(fields)))
			}

		case types.BackendNotificationResponse:
			notif, err := pgproto.ParseNotificationResponse(s.reader)
			if err != nil {
				return Result{}, err
			}

			if s.NotificationCallback != nil && s.NotificationCallback(notif) {
				return result, nil
			}

		case types.BackendParameterStatus:
			ps, err := pgproto.ParseParameterStatus(s.reader)
			if err != nil {
				return Result{}, err
			}

			s.ParameterStatuses[ps.Name] = ps.Value

		case types.BackendBackendKeyData:
			bkd, err := pgproto.ParseBackendKeyData(s.reader)
			if err != nil {
				return Result{}, err
			}

			s.BackendKeyData = bkd

		case types.BackendCopyData:
			s.hooks.CopyRow()
			if interceptor == nil {
				continue
			}

			brk, err := interceptor(t, s.reader)
			if err != nil {
				return Result{}, err
			}
			if brk {
				return result, nil
			}

		default:
			if interceptor == nil {
				continue
			}

			brk, err := interceptor(t, s.reader)
			if err != nil {
				return Result{}, err
			}
			if brk {
				return result, nil
			}
		}
	}
}
