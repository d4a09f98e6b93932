// Package fann binds libfann as engine "fann".
//
// Die Bindings benoetigen libfann (floatfann) bzw. mit dem Build-Tag fann_fixed
// libfixedfann. Im Festkomma-Build sind Training und Skalierung nicht verfuegbar
// und melden FANN_E_CANT_USE_TRAIN_ALG ueber das Fehlerregister.
//
// Build:
//
//	go build -tags fann ./...
//	go build -tags fann,fann_fixed ./...
//
// Ohne Build-Tag ist das Paket leer und registriert keine Engine.
package fann
