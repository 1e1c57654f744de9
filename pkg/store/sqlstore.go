package store

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"worklog/worklog-api/pkg/config"
)

// SQLStore keeps each collection as a single row in Postgres. The
// whole-collection load/save semantics are identical to FileStore; the
// database only replaces the file as the backing container.
type SQLStore struct {
	config *config.Config

	conn *sqlx.DB

	stmtEnsure *sqlx.NamedStmt
	stmtRead   *sqlx.NamedStmt
	stmtWrite  *sqlx.NamedStmt
}

func NewSQLStore(cfg *config.Config) (*SQLStore, error) {
	if cfg == nil || cfg.Storage == nil || cfg.Storage.Postgres == nil {
		log.WithFields(log.Fields{
			"config": cfg,
		}).Error("invalid config")
		return nil, config.ErrInvalidConfig
	}

	srv := &SQLStore{
		config: cfg,
	}

	conn, err := sqlx.Connect("postgres", fmt.Sprintf("postgres://%v:%v@%v:%d/%v",
		cfg.Storage.Postgres.Username,
		cfg.Storage.Postgres.Password,
		cfg.Storage.Postgres.Hostname,
		cfg.Storage.Postgres.Port,
		cfg.Storage.Postgres.Database))
	if err != nil {
		return nil, err
	}

	srv.conn = conn

	_, err = srv.conn.Exec(`
	CREATE TABLE IF NOT EXISTS collections (
		name text PRIMARY KEY,
		data jsonb NOT NULL
	)
`)
	if err != nil {
		log.WithFields(log.Fields{"err": err}).Error("Failed to create collections table")
		return nil, err
	}

	srv.stmtEnsure, err = srv.conn.PrepareNamed(`
	INSERT INTO collections (
		name,
	    data
	    ) VALUES (
	    :name,
		'[]'
	) ON CONFLICT (name) DO NOTHING
`)
	if err != nil {
		log.WithFields(log.Fields{"err": err}).Error("Failed stmtEnsure")
		return nil, err
	}

	srv.stmtRead, err = srv.conn.PrepareNamed(`
	SELECT
	    data
	FROM
		collections
	WHERE name = :name
`)
	if err != nil {
		log.WithFields(log.Fields{"err": err}).Error("Failed stmtRead")
		return nil, err
	}

	srv.stmtWrite, err = srv.conn.PrepareNamed(`
	INSERT INTO collections (
		name,
	    data
	    ) VALUES (
	    :name,
	    :data
	) ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data
`)
	if err != nil {
		log.WithFields(log.Fields{"err": err}).Error("Failed stmtWrite")
		return nil, err
	}

	return srv, nil
}

func (s *SQLStore) Ensure(name string) error {
	query := struct {
		Name string `db:"name"`
	}{
		Name: name,
	}
	_, err := s.stmtEnsure.Exec(query)
	if err != nil {
		log.WithFields(log.Fields{
			"err": err,
		}).Error("Failed to Exec Ensure")
		return err
	}
	return nil
}

func (s *SQLStore) Read(name string) ([]byte, error) {
	var data []byte
	query := struct {
		Name string `db:"name"`
	}{
		Name: name,
	}
	err := s.stmtRead.Get(&data, query)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Errorf("no such collection: %s", name)
		}
		log.WithFields(log.Fields{
			"err": err,
		}).Error("Failed to Get Read")
		return nil, err
	}
	return data, nil
}

func (s *SQLStore) Write(name string, data []byte) error {
	query := struct {
		Name string `db:"name"`
		Data []byte `db:"data"`
	}{
		Name: name,
		Data: data,
	}
	_, err := s.stmtWrite.Exec(query)
	if err != nil {
		log.WithFields(log.Fields{
			"err": err,
		}).Error("Failed to Exec Write")
		return err
	}
	return nil
}
