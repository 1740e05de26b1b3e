package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"
)

var (
	// BoltDB bucket names
	bucketRecords    = []byte("records")
	bucketOplog      = []byte("oplog")
	bucketQuarantine = []byte("oplog_quarantine")
	bucketMeta       = []byte("meta")
	bucketAudit      = []byte("audit")
)

// DefaultMaxPendingOps предел несинхронизированных операций по умолчанию.
// Защищает ограниченное хранилище мобильного устройства от неограниченного
// роста журнала при долгом оффлайне.
const DefaultMaxPendingOps = 1000

// Storage represents BoltDB storage implementation for the device:
// журнал операций, локальные записи, метаданные и аудиторский след
// живут в одном файле, что позволяет делать шаг Committing одной
// транзакцией bbolt.
type Storage struct {
	db            *bbolt.DB
	maxPendingOps int
}

// New creates a new BoltDB storage instance.
// dbPath is the path to the BoltDB database file.
// maxPendingOps <= 0 использует DefaultMaxPendingOps.
func New(ctx context.Context, dbPath string, maxPendingOps int) (*Storage, error) {
	if maxPendingOps <= 0 {
		maxPendingOps = DefaultMaxPendingOps
	}

	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	storage := &Storage{
		db:            db,
		maxPendingOps: maxPendingOps,
	}

	if err := storage.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return storage, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		buckets := [][]byte{bucketRecords, bucketOplog, bucketQuarantine, bucketMeta, bucketAudit}
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// seqKey кодирует sequence в big-endian ключ: байтовый порядок ключей
// совпадает с числовым порядком sequence, курсор обходит журнал по порядку.
func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
