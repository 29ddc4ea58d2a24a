package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

const createTestAttemptsSQL = `CREATE TABLE IF NOT EXISTS test_attempts (
	id {{id}},
	first_name VARCHAR(120) NOT NULL,
	last_name VARCHAR(120) NOT NULL,
	total_questions INTEGER NOT NULL DEFAULT 0,
	correct_answers INTEGER NOT NULL DEFAULT 0,
	incorrect_answers INTEGER NOT NULL DEFAULT 0,
	created_at {{timestamp}} NOT NULL
)`

const createAttemptAnswersSQL = `CREATE TABLE IF NOT EXISTS attempt_answers (
	id {{id}},
	attempt_id BIGINT NOT NULL REFERENCES test_attempts (id) ON DELETE CASCADE,
	question_id BIGINT NOT NULL REFERENCES questions (id) ON DELETE CASCADE,
	selected_option_id BIGINT NOT NULL REFERENCES answer_options (id) ON DELETE CASCADE,
	is_correct BOOLEAN NOT NULL DEFAULT FALSE
)`

const createNotificationSettingsSQL = `CREATE TABLE IF NOT EXISTS notification_settings (
	id {{id}},
	bot_token VARCHAR(255) NOT NULL DEFAULT '',
	admin_chat_id VARCHAR(100) NOT NULL DEFAULT '',
	is_active BOOLEAN NOT NULL DEFAULT FALSE,
	created_at {{timestamp}} NOT NULL,
	updated_at {{timestamp}} NOT NULL
)`

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			return exec(ctx, db,
				createTestAttemptsSQL,
				`CREATE INDEX IF NOT EXISTS test_attempts_created_at_idx ON test_attempts (created_at)`,
				createAttemptAnswersSQL,
				`CREATE INDEX IF NOT EXISTS attempt_answers_attempt_id_idx ON attempt_answers (attempt_id)`,
				`CREATE INDEX IF NOT EXISTS attempt_answers_question_id_idx ON attempt_answers (question_id)`,
				`CREATE INDEX IF NOT EXISTS attempt_answers_selected_option_id_idx ON attempt_answers (selected_option_id)`,
				createNotificationSettingsSQL,
			)
		},
		func(ctx context.Context, db *bun.DB) error {
			return exec(ctx, db,
				`DROP TABLE IF EXISTS notification_settings`,
				`DROP TABLE IF EXISTS attempt_answers`,
				`DROP TABLE IF EXISTS test_attempts`,
			)
		},
	)
}
