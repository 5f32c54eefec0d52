// Package educertify and its sub-packages implement the backend of EduCertify, a certificate dashboard on top of the
// educertify Move module published on the Aptos blockchain.
/*
educertify provides you with two services and a command line client:

1) an educertify service (package dashboard) that implements a RESTful API for the teacher and student dashboards:
 connecting a wallet, initializing issuer and student accounts, issuing and revoking certificates, fetching the
 certificates of the connected account and building links to share them.

2) an explorer service (package explorer) that follows submitted transactions until they are committed and reports
 their outcome.

3) edc (cmd/edc), a client of the educertify RESTful API.

Architecture

Transactions are never signed by the services. Every action is built as an entry function payload and handed to the
wallet through a bridge (package bridge), which asks its user to sign and submit it and replies the pending
transaction hash. The session of the connected wallet (package session) gates every action: nothing is submitted
without a connected account. Reads go straight to a fullnode through the blockchain layer (package lib/block), which
calls the view functions of the module.

Each action raises notifications (package notify) that clients read from the API: a loading message replaced by its
success or error outcome, and a link to the transaction in the Aptos explorer.

The educertify and explorer services communicate via a message broker (package lib/msg). The educertify service asks
the explorer to watch submitted transaction hashes, the explorer polls the fullnode and sends an event once a
transaction is committed or fails, and educertify notifies the outcome. With "watch" set in the configuration the
watcher runs in process instead and no broker is needed.

Submitted actions can be recorded in an activity log kept in MongoDB or PostgreSQL (package lib/store). Both services
read their configuration from a JSON or TOML file, a .env file and EDC_ OS ENV variables (package lib/config), and can
be monitored via a Prometheus API by setting the flag "-m" at startup.

EduCertify

The educertify service can be started running cmd/educertify/main.go. It serves a single wallet session, the one of
the bridge configured at startup.

Explorer

The explorer service can be started running cmd/explorer/main.go. It runs one watcher per configured network and
consumes watch requests from the broker.

*/
package educertify
