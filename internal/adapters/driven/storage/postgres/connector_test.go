package postgres

import (
	"context"
	"database/sql/driver"
)

// connectorWithSearchPath pins each new connection to one schema so
// integration tests do not collide.
type connectorWithSearchPath struct {
	driver.Connector
	schema string
}

func (c connectorWithSearchPath) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := c.Connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	execer, ok := conn.(driver.ExecerContext)
	if !ok {
		return conn, nil
	}
	if _, err := execer.ExecContext(ctx, "SET search_path TO "+c.schema+", public", nil); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}
