package srv

import "context"

// Cleanup adapts a teardown func, such as (*sql.DB).Close, to a Service that
// only acts at shutdown.
type Cleanup func() error

func (Cleanup) Start(context.Context) error { return nil }

func (c Cleanup) Shutdown(context.Context) error {
	if c == nil {
		return nil
	}
	return c()
}
