//go:generate moq -out mock_conn_test.go -pkg coordinator ../transaction Conn
//go:generate moq -out mock_connector_test.go -pkg coordinator ../transaction Connector
//go:generate moq -out mock_protocolengine_test.go -pkg coordinator ../transaction ProtocolEngine

package coordinator
