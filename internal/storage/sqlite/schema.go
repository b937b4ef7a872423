// ABOUTME: SQLite database schema for conversations, messages, todos, and the audit log
// ABOUTME: Creates all tables and indexes for local storage
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
CREATE TABLE IF NOT EXISTS conversations (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    last_updated_at DATETIME NOT NULL
);

-- rowid breaks timestamp ties in insertion order
CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
    role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
    content TEXT NOT NULL,
    timestamp DATETIME NOT NULL
);

-- AUTOINCREMENT guarantees ids are never reused
CREATE TABLE IF NOT EXISTS todos (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT,
    status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'completed', 'archived')),
    priority TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high')),
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    created_in_conversation_id TEXT REFERENCES conversations(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS tool_invocations (
    id TEXT PRIMARY KEY,
    message_id TEXT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
    tool_name TEXT NOT NULL,
    parameters TEXT NOT NULL,
    result TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('success', 'failure')),
    timestamp DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id, last_updated_at);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_todos_user_status ON todos(user_id, status, updated_at);
CREATE INDEX IF NOT EXISTS idx_todos_conversation ON todos(user_id, created_in_conversation_id);
CREATE INDEX IF NOT EXISTS idx_invocations_message ON tool_invocations(message_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_invocations_tool ON tool_invocations(tool_name, timestamp);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1
