package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

const createQuestionsSQL = `CREATE TABLE IF NOT EXISTS questions (
	id {{id}},
	text TEXT NOT NULL,
	created_at {{timestamp}} NOT NULL,
	updated_at {{timestamp}} NOT NULL
)`

const createAnswerOptionsSQL = `CREATE TABLE IF NOT EXISTS answer_options (
	id {{id}},
	question_id BIGINT NOT NULL REFERENCES questions (id) ON DELETE CASCADE,
	text VARCHAR(255) NOT NULL,
	is_correct BOOLEAN NOT NULL DEFAULT FALSE
)`

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			return exec(ctx, db,
				createQuestionsSQL,
				`CREATE INDEX IF NOT EXISTS questions_created_at_idx ON questions (created_at)`,
				createAnswerOptionsSQL,
				`CREATE INDEX IF NOT EXISTS answer_options_question_id_idx ON answer_options (question_id)`,
			)
		},
		func(ctx context.Context, db *bun.DB) error {
			return exec(ctx, db,
				`DROP TABLE IF EXISTS answer_options`,
				`DROP TABLE IF EXISTS questions`,
			)
		},
	)
}
