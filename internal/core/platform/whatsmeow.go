package platform

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
	_ "modernc.org/sqlite"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
)

const (
	defaultSQLiteStore = "file:whatsapp-store.db?_foreign_keys=on"
	qrImagePath        = "whatsapp-qr.png"
)

// WhatsmeowSender sends WhatsApp messages through a linked device session
// instead of the Cloud API. Only one session per process is supported.
type WhatsmeowSender struct {
	storeURL string
	mu       sync.RWMutex
	client   *whatsmeow.Client
}

// NewWhatsmeowSender creates the transport. A postgres:// store URL keeps
// the device session in postgres, anything else in a local sqlite file.
func NewWhatsmeowSender(storeURL string) *WhatsmeowSender {
	return &WhatsmeowSender{storeURL: storeURL}
}

func (w *WhatsmeowSender) initStore(ctx context.Context) (*sqlstore.Container, error) {
	dbLog := waLog.Stdout("WhatsApp-Store", "ERROR", true)

	if strings.HasPrefix(w.storeURL, "postgres://") || strings.HasPrefix(w.storeURL, "postgresql://") {
		log.Info().Msg("🌐 Using PostgreSQL database for WhatsApp store")
		container, err := sqlstore.New(ctx, "postgres", w.storeURL, dbLog)
		if err != nil {
			return nil, fmt.Errorf("failed to init PostgreSQL store: %w", err)
		}
		if err := container.Upgrade(ctx); err != nil {
			return nil, fmt.Errorf("failed to upgrade PostgreSQL schema: %w", err)
		}
		return container, nil
	}

	dsn := strings.TrimPrefix(w.storeURL, "sqlite://")
	if dsn == "" {
		dsn = defaultSQLiteStore
	}
	log.Info().Str("dsn", dsn).Msg("💾 Using local SQLite WhatsApp store")

	rawDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	if _, err = rawDB.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		log.Warn().Err(err).Msg("⚠️ Failed to enable foreign_keys pragma")
	}

	container := sqlstore.NewWithDB(rawDB, "sqlite", dbLog)
	if err := container.Upgrade(ctx); err != nil {
		return nil, fmt.Errorf("failed to upgrade SQLite schema: %w", err)
	}
	return container, nil
}

// Connect opens the session. An unpaired device prints a QR code and
// writes it to whatsapp-qr.png, then blocks until it is scanned.
func (w *WhatsmeowSender) Connect(ctx context.Context) error {
	container, err := w.initStore(ctx)
	if err != nil {
		return err
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return fmt.Errorf("failed to get device: %w", err)
	}

	client := whatsmeow.NewClient(deviceStore, waLog.Stdout("Client", "INFO", true))

	if client.Store.ID == nil {
		qrChan, err := client.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("failed to open QR channel: %w", err)
		}
		if err := client.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}

		for evt := range qrChan {
			switch evt.Event {
			case "code":
				log.Info().Str("code", evt.Code).Msg("🔗 Scan this QR code in WhatsApp > Linked devices")
				if err := qrcode.WriteFile(evt.Code, qrcode.Medium, 256, qrImagePath); err != nil {
					log.Warn().Err(err).Msg("Failed to write QR image")
				} else {
					log.Info().Str("path", qrImagePath).Msg("🖼️ QR code saved")
				}
			case "success":
				log.Info().Msg("✅ WhatsApp device paired")
			case "timeout":
				client.Disconnect()
				return fmt.Errorf("QR code timeout")
			}
		}
	} else {
		if err := client.Connect(); err != nil {
			return fmt.Errorf("failed to reconnect: %w", err)
		}
		log.Info().Msg("✅ Reconnected to WhatsApp")
	}

	w.mu.Lock()
	w.client = client
	w.mu.Unlock()
	return nil
}

func (w *WhatsmeowSender) Disconnect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.client != nil {
		w.client.Disconnect()
		w.client = nil
		log.Info().Msg("🔌 Whatsmeow client disconnected")
	}
}

func (w *WhatsmeowSender) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.client != nil && w.client.IsConnected()
}

func (w *WhatsmeowSender) SendMessage(ctx context.Context, req SendRequest) (SendResult, error) {
	if req.Platform != automation.PlatformWhatsApp {
		return SendResult{}, ErrUnsupported
	}

	w.mu.RLock()
	client := w.client
	w.mu.RUnlock()
	if client == nil {
		return SendResult{}, fmt.Errorf("whatsmeow client not initialized")
	}

	jid := types.NewJID(cleanPhoneNumber(req.RecipientID), "s.whatsapp.net")
	msg := &waProto.Message{
		Conversation: proto.String(req.Text),
	}

	resp, err := client.SendMessage(ctx, jid, msg)
	if err != nil {
		return SendResult{}, fmt.Errorf("whatsmeow send failed: %w", err)
	}
	return SendResult{ExternalMessageID: resp.ID}, nil
}

func (w *WhatsmeowSender) ReplyToComment(ctx context.Context, req SendRequest) (SendResult, error) {
	return SendResult{}, ErrUnsupported
}

// StartKeepAlive sends a presence update every interval until ctx ends
func (w *WhatsmeowSender) StartKeepAlive(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("🔄 WhatsApp keep-alive started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("🛑 WhatsApp keep-alive stopped")
			return
		case <-ticker.C:
			w.mu.RLock()
			client := w.client
			w.mu.RUnlock()
			if client != nil && client.IsConnected() {
				if err := client.SendPresence(ctx, types.PresenceAvailable); err != nil {
					log.Warn().Err(err).Msg("⚠️ Keep-alive ping failed")
				} else {
					log.Debug().Msg("💓 Keep-alive ping sent")
				}
			}
		}
	}
}
