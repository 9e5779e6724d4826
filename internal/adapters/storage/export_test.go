package storage

// PruneOld expone la limpieza de cache diaria a los tests externos.
var PruneOld = (*Storage).pruneOld
