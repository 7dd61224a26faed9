package ticketbot

import (
	"github.com/go-xorm/core"
	"github.com/go-xorm/xorm"
)

type dbConfig struct {
	Driver      string
	DataSource  string
	TablePrefix string
}

type dbHandle struct {
	engine *xorm.Engine
}

// setupDB opens the xorm engine described by the optional [db] config
// section. Plugins that want persistence check Bot.DB for nil and degrade
// gracefully without it.
func (b *Bot) setupDB() error {
	dbc := &dbConfig{}

	err := b.Config("db", dbc)
	if err != nil {
		b.log.Debug("Database storage is disabled")
		return nil
	}

	engine, err := xorm.NewEngine(dbc.Driver, dbc.DataSource)
	if err != nil {
		return err
	}

	// Ensure table and column mapping is set up how we want it. This means
	// using the GonicMapper as a base (so stuff like ID is converted properly)
	// but also adding a table prefix (if set) and caching the results (similar
	// to the default mapper).
	var columnMapper core.IMapper = core.NewCacheMapper(core.GonicMapper{})
	var tableMapper core.IMapper = core.GonicMapper{}
	if dbc.TablePrefix != "" {
		tableMapper = core.NewPrefixMapper(tableMapper, dbc.TablePrefix)
	}
	tableMapper = core.NewCacheMapper(tableMapper)

	engine.SetColumnMapper(columnMapper)
	engine.SetTableMapper(tableMapper)

	b.db = &dbHandle{engine: engine}

	return nil
}

// DB returns the bot's xorm engine, or nil when no [db] section was
// configured.
func (b *Bot) DB() *xorm.Engine {
	if b.db == nil {
		return nil
	}

	return b.db.engine
}
