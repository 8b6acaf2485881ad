package gateway

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	config "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Config"
	"gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.GatewayService/client"
	logger "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Logger"
)

// vitalsPayload is the reading a wearable publishes over MQTT. The device
// identifier lives in the topic, not the payload.
type vitalsPayload struct {
	HeartRate *float64   `json:"heartRate"`
	SpO2      *float64   `json:"spo2"`
	Timestamp *time.Time `json:"timestamp"`
}

type pendingReading struct {
	deviceID string
	payload  vitalsPayload
}

// Gateway bridges MQTT-publishing wearables to the API service's HTTP
// ingestion endpoint
type Gateway struct {
	cfg        config.GatewayConfig
	apiClient  *client.APIClient
	mqttClient mqtt.Client
	msgCh      chan pendingReading
	wg         sync.WaitGroup
	logger     *logger.Logger
}

// New creates a new gateway
func New(cfg config.GatewayConfig, apiClient *client.APIClient, logger *logger.Logger) *Gateway {
	return &Gateway{
		cfg:       cfg,
		apiClient: apiClient,
		msgCh:     make(chan pendingReading, 4096),
		logger:    logger,
	}
}

// Start connects to the broker, subscribes and launches the forwarder
func (g *Gateway) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(g.cfg.GetMQTTBrokerURL()).
		SetClientID(g.cfg.MQTT.ClientID).
		SetOrderMatters(false).
		SetKeepAlive(g.cfg.MQTT.KeepAlive).
		SetPingTimeout(g.cfg.MQTT.PingTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetCleanSession(false)

	if g.cfg.MQTT.BrokerUser != "" {
		opts.SetUsername(g.cfg.MQTT.BrokerUser)
		opts.SetPassword(g.cfg.MQTT.BrokerPass)
	}

	if g.cfg.MQTT.UseTLS {
		tlsCfg, err := g.tlsConfig(g.cfg.MQTT.CACertPath)
		if err != nil {
			return err
		}
		opts.SetTLSConfig(tlsCfg)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		g.logger.Logger.Error().Err(err).Msg("MQTT connection lost")
	}
	opts.OnConnect = func(c mqtt.Client) {
		topic := g.cfg.MQTT.Topic
		if g.cfg.MQTT.SharedGroup != "" {
			topic = fmt.Sprintf("$share/%s/%s", g.cfg.MQTT.SharedGroup, g.cfg.MQTT.Topic)
		}
		g.logger.Logger.Info().Str("topic", topic).Msg("MQTT connected, subscribing to topic")
		if token := c.Subscribe(topic, 1, g.onMessage); token.Wait() && token.Error() != nil {
			g.logger.Logger.Error().Err(token.Error()).Str("topic", topic).Msg("Failed to subscribe to MQTT topic")
		}
	}

	g.mqttClient = mqtt.NewClient(opts)
	if tk := g.mqttClient.Connect(); tk.Wait() && tk.Error() != nil {
		return tk.Error()
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		g.forwarder(ctx)
	}()

	return nil
}

// Stop disconnects from the broker and drains the forwarder
func (g *Gateway) Stop() {
	if g.mqttClient != nil && g.mqttClient.IsConnected() {
		g.mqttClient.Disconnect(500)
	}
	close(g.msgCh)
	g.wg.Wait()
}

// IsConnected reports the broker connection state
func (g *Gateway) IsConnected() bool {
	return g.mqttClient != nil && g.mqttClient.IsConnected()
}

func (g *Gateway) onMessage(_ mqtt.Client, m mqtt.Message) {
	g.logger.Logger.Debug().Str("topic", m.Topic()).Msg("Received MQTT message")

	// Expected format: wearables/<deviceId>/vitals
	parts := strings.Split(m.Topic(), "/")
	if len(parts) != 3 || parts[0] != "wearables" || parts[2] != "vitals" || parts[1] == "" {
		g.logger.Logger.Warn().Str("topic", m.Topic()).Str("expected", "wearables/<deviceId>/vitals").Msg("Invalid topic format")
		return
	}

	var payload vitalsPayload
	if err := json.Unmarshal(m.Payload(), &payload); err != nil {
		g.logger.Logger.Warn().Err(err).Str("topic", m.Topic()).Msg("Invalid vitals payload")
		return
	}
	if payload.HeartRate == nil || payload.SpO2 == nil {
		g.logger.Logger.Warn().Str("topic", m.Topic()).Msg("Vitals payload missing heartRate or spo2")
		return
	}

	select {
	case g.msgCh <- pendingReading{deviceID: parts[1], payload: payload}:
	default:
		g.logger.Logger.Warn().Str("device_id", parts[1]).Msg("Forwarder queue full, dropping reading")
	}
}

func (g *Gateway) forwarder(ctx context.Context) {
	for reading := range g.msgCh {
		req := client.MeasurementRequest{
			DeviceID:  reading.deviceID,
			HeartRate: *reading.payload.HeartRate,
			SpO2:      *reading.payload.SpO2,
			Timestamp: reading.payload.Timestamp,
		}

		if err := g.apiClient.PostMeasurement(ctx, req); err != nil {
			g.logger.Logger.Error().Err(err).Str("device_id", reading.deviceID).Msg("Failed to forward measurement")
		}
	}
}

func (g *Gateway) tlsConfig(caCertPath string) (*tls.Config, error) {
	if caCertPath == "" {
		return &tls.Config{}, nil
	}

	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}

	return &tls.Config{RootCAs: pool}, nil
}
