package session

import "github.com/pgwireclient/pgwire/pkg/types"

// Hooks lets an optional collaborator observe session activity without the
// session package depending on it. A nil Hooks is never dereferenced: every
// call site goes through Session.hooks, which defaults to noopHooks{}.
type Hooks interface {
	FrameSent(t types.FrontendMessage)
	FrameReceived(t types.BackendMessage)
	ReadyForQuery()
	BackendErrorObserved()
	CopyRow()
}

type noopHooks struct{}

func (noopHooks) FrameSent(types.FrontendMessage)   {}
func (noopHooks) FrameReceived(types.BackendMessage) {}
func (noopHooks) ReadyForQuery()                     {}
func (noopHooks) BackendErrorObserved()              {}
func (noopHooks) CopyRow()                           {}
