package dashboard

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const timeout = 15

// Router returns the RESTful API of the dashboards.
func (a *App) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", a.homeHandler)
	r.HandleFunc("/session", a.sessionHandler).Methods("GET")                           // wallet session
	r.HandleFunc("/connect", a.connectHandler).Methods("POST")                          // connect wallet
	r.HandleFunc("/celebration", a.celebrationHandler).Methods("DELETE")                // end celebration
	r.HandleFunc("/notifications", a.notificationsHandler).Methods("GET")               // notifications shown
	r.HandleFunc("/teacher", a.teacherHandler).Methods("GET")                           // teacher dashboard
	r.HandleFunc("/teacher/issuer", a.issuerHandler).Methods("POST")                    // initialize issuer
	r.HandleFunc("/teacher/issue-form", a.issueFormHandler).Methods("POST", "DELETE")   // open/close issue form
	r.HandleFunc("/teacher/certificates", a.issueHandler).Methods("POST")               // issue a certificate
	r.HandleFunc("/teacher/revoke-form", a.revokeFormHandler).Methods("POST", "DELETE") // open/close revoke form
	r.HandleFunc("/teacher/revocations", a.revokeHandler).Methods("POST")               // revoke a certificate
	r.HandleFunc("/student", a.studentHandler).Methods("GET")                           // student dashboard
	r.HandleFunc("/student/store", a.storeHandler).Methods("POST")                      // initialize certificate store
	r.HandleFunc("/student/certificates/fetch", a.fetchHandler).Methods("POST")         // fetch certificates from chain
	r.HandleFunc("/student/certificates", a.certificatesHandler).Methods("GET")         // certificates fetched
	r.HandleFunc("/student/certificates/{id}", a.certificateHandler).Methods("GET")     // certificate details
	r.HandleFunc("/student/certificates/{id}/qr", a.qrHandler).Methods("GET")           // verification QR code
	r.HandleFunc("/student/share/{target}", a.shareHandler).Methods("GET")              // share link
	r.HandleFunc("/actions", a.actionsHandler).Methods("GET")                           // activity log

	return r
}

// Init sets up and starts the http/https server to service the RESTful API of the dashboards. If sslPort, sslCert
// and sslKey are informed, it will start an https (TLS) server on the specified endpoint. Actions wait for the wallet
// user to decide so no write timeout is set.
func (a *App) Init(endpoint, port, sslPort, sslCert, sslKey string) string {
	var err, errTLS error

	r := a.Router()

	// start http server
	if port != "" {
		a.srv = &http.Server{
			Handler:     r,
			Addr:        endpoint + ":" + port,
			ReadTimeout: timeout * time.Second,
		}

		go func() {
			err = a.srv.ListenAndServe()
		}()

		log.Printf("Listening to API http requests on %s:%s", endpoint, port)
	}
	// start https server
	if sslPort != "" && sslCert != "" && sslKey != "" {
		a.ssrv = &http.Server{
			Handler:     r,
			Addr:        endpoint + ":" + sslPort,
			ReadTimeout: timeout * time.Second,
		}

		go func() {
			errTLS = a.ssrv.ListenAndServeTLS(sslCert, sslKey)
		}()

		log.Printf("Listening to API https requests on %s:%s", endpoint, sslPort)
	}
	// wait for servers to be shutdown
	<-a.sc

	return fmt.Sprintf("shutdown http server:%v, https server:%v", err, errTLS)
}

// Stop shuts down the http servers implementing the RESTful API.
func (a *App) Stop() {
	var err error
	// shutdown http server
	if a.srv != nil {
		if err = a.srv.Shutdown(context.Background()); err != nil {
			log.Printf("Error in http server shutdown:%v", err)
		}
	}
	if a.ssrv != nil {
		if err = a.ssrv.Shutdown(context.Background()); err != nil {
			log.Printf("Error in https server shutdown:%v", err)
		}
	}
	close(a.sc) // close server channels to indicate shutdowns have finished
}
