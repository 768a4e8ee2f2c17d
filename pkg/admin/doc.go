// Package admin provides the heads of the *admin* plugin, a JSON API under
// /hydra-admin for inspecting and driving a running hydra:
//
//	GET  /hydra-admin/plugins                          plugins, heads and tests
//	POST /hydra-admin/heads/{plugin}/{head}/attach     attach a head
//	POST /hydra-admin/heads/{plugin}/{head}/detach     detach a head
//	POST /hydra-admin/heads/dynamic                    add a head to *dynamic*
//	POST /hydra-admin/tests/{plugin}/{test}/start      start a test
//	POST /hydra-admin/tests/stop                       stop the current test
//	GET  /hydra-admin/tests/current                    the current test
//	GET  /hydra-admin/tests/results                    every test result
//	GET  /hydra-admin/metrics                          Prometheus metrics
//	GET  /hydra-admin/health                           liveness
//
// Install them with hydra.WithAdminHeads(admin.Heads(...)).
package admin
