package websocket

import "golang.org/x/net/websocket"

// ReadWriter carries one packet per binary websocket frame.
type ReadWriter struct {
	Conn *websocket.Conn
}

// New switches conn to binary frames and wraps it.
func New(conn *websocket.Conn) *ReadWriter {
	conn.PayloadType = websocket.BinaryFrame
	return &ReadWriter{Conn: conn}
}

// ReadPacket implements comm.PacketReadWriter.
func (rw *ReadWriter) ReadPacket() ([]byte, error) {
	var pkt []byte
	if err := websocket.Message.Receive(rw.Conn, &pkt); err != nil {
		return nil, err
	}
	return pkt, nil
}

// WritePacket implements comm.PacketReadWriter.
func (rw *ReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send(rw.Conn, pkt)
}

// Close closes the websocket.
func (rw *ReadWriter) Close() error {
	return rw.Conn.Close()
}
