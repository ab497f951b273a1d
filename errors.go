package main

import "errors"

var errNotEditable = errors.New("grid is not editable: no source table or primary key")
