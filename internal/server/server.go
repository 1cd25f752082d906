package server

// Server объединяет HTTP-серверы отдельных сущностей.
type Server struct {
	ProxyServer
	OfferServer
	ScannerServer
}

func NewServer(
	proxyServer ProxyServer,
	offerServer OfferServer,
	scannerServer ScannerServer,
) Server {
	return Server{
		ProxyServer:   proxyServer,
		OfferServer:   offerServer,
		ScannerServer: scannerServer,
	}
}
